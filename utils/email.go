package utils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) error
}

// PostmarkMailer sends emails using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailer(apiToken, from string) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(apiToken, ""),
		from:   from,
	}
}

func (pm *PostmarkMailer) Send(_ context.Context, toEmail, subject, htmlContent string) error {
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendgridMailer sends emails using the SendGrid v3 API
type SendgridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendgridMailer(apiKey, from, fromName string) *SendgridMailer {
	return &SendgridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (sm *SendgridMailer) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(sm.fromName, sm.from),
		subject,
		mail.NewEmail("", toEmail),
		"",
		htmlContent,
	)
	resp, err := sm.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// NewMailer picks the provider by name; anything other than "sendgrid" uses Postmark.
func NewMailer(provider, postmarkToken, sendgridKey, from, fromName string) Mailer {
	if provider == "sendgrid" {
		return NewSendgridMailer(sendgridKey, from, fromName)
	}
	return NewPostmarkMailer(postmarkToken, from)
}

// EmailService renders the transactional templates and hands them to a Mailer
type EmailService struct {
	mailer  Mailer
	appName string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(mailer Mailer, appName string) *EmailService {
	return &EmailService{mailer: mailer, appName: appName}
}

// SendVerificationOTP emails the registration code
func (es *EmailService) SendVerificationOTP(ctx context.Context, toEmail, name, otp string) error {
	html, err := renderOTPEmail(otpEmailData{
		AppName: es.appName,
		Title:   "Verify your email",
		Name:    name,
		Intro:   "Thank you for signing up! Please verify your email using the OTP below:",
		OTP:     otp,
		Minutes: 5,
	})
	if err != nil {
		return err
	}
	if err := es.mailer.Send(ctx, toEmail, "Verify Your Email - "+es.appName, html); err != nil {
		return err
	}
	slog.InfoContext(ctx, "verification email sent", "to", toEmail)
	return nil
}

// SendPasswordResetOTP emails the password reset code
func (es *EmailService) SendPasswordResetOTP(ctx context.Context, toEmail, name, otp string) error {
	html, err := renderOTPEmail(otpEmailData{
		AppName: es.appName,
		Title:   "Reset your password",
		Name:    name,
		Intro:   "We received a request to reset your password. Use the OTP below to continue:",
		OTP:     otp,
		Minutes: 5,
	})
	if err != nil {
		return err
	}
	return es.mailer.Send(ctx, toEmail, "Password Reset - "+es.appName, html)
}

// SendOrderNotification emails a short order update
func (es *EmailService) SendOrderNotification(ctx context.Context, toEmail, name, subject, body string) error {
	html, err := renderNoticeEmail(noticeEmailData{
		AppName: es.appName,
		Title:   subject,
		Name:    name,
		Body:    body,
	})
	if err != nil {
		return err
	}
	return es.mailer.Send(ctx, toEmail, subject+" - "+es.appName, html)
}
