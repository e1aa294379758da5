package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type otpEmailData struct {
	AppName string
	Title   string
	Name    string
	Intro   string
	OTP     string
	Minutes int
}

type noticeEmailData struct {
	AppName string
	Title   string
	Name    string
	Body    string
}

const emailStyle = `
    body { font-family: 'Segoe UI', sans-serif; background-color: #f5f7fa; color: #333; margin: 0; padding: 0; }
    .container { max-width: 560px; margin: 40px auto; background: #ffffff; border-radius: 12px; padding: 30px; }
    .title { font-size: 22px; font-weight: 600; margin-bottom: 10px; }
    .message { font-size: 16px; margin-bottom: 24px; line-height: 1.6; }
    .otp-box { background: #f0f0f0; border-radius: 8px; padding: 16px; text-align: center; font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #111; margin-bottom: 20px; }
    .footer { text-align: center; font-size: 13px; color: #999; margin-top: 24px; }`

var otpTemplate = template.Must(template.New("otp").Funcs(template.FuncMap{"year": currentYear}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>{{.Title}}</title>
  <style>` + emailStyle + `</style>
</head>
<body>
  <div class="container">
    <div class="title">{{.Title}}</div>
    <div class="message">Hello <strong>{{.Name}}</strong>,<br/>{{.Intro}}</div>
    <div class="otp-box">{{.OTP}}</div>
    <div class="message">This OTP is valid for {{.Minutes}} minutes. Do not share it with anyone.</div>
    <div class="footer">&copy; {{year}} {{.AppName}}. All rights reserved.</div>
  </div>
</body>
</html>`))

var noticeTemplate = template.Must(template.New("notice").Funcs(template.FuncMap{"year": currentYear}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>{{.Title}}</title>
  <style>` + emailStyle + `</style>
</head>
<body>
  <div class="container">
    <div class="title">{{.Title}}</div>
    <div class="message">Hello <strong>{{.Name}}</strong>,<br/>{{.Body}}</div>
    <div class="footer">&copy; {{year}} {{.AppName}}. All rights reserved.</div>
  </div>
</body>
</html>`))

func currentYear() int {
	return time.Now().Year()
}

func renderOTPEmail(data otpEmailData) (string, error) {
	if data.Name == "" {
		data.Name = "User"
	}
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func renderNoticeEmail(data noticeEmailData) (string, error) {
	if data.Name == "" {
		data.Name = "Customer"
	}
	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
