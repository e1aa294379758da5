package services

import (
	"context"
	"errors"
	"fmt"

	"forever-ecommerce/events"
	"forever-ecommerce/models"
	"forever-ecommerce/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderNotifier consumes order events and emails customers and the support
// inbox according to the notification settings.
type OrderNotifier struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	email    EmailSender
}

func NewOrderNotifier(users repository.UserRepository, settings repository.SettingsRepository, email EmailSender) *OrderNotifier {
	return &OrderNotifier{users: users, settings: settings, email: email}
}

// Handle is an events.Handler.
func (n *OrderNotifier) Handle(ctx context.Context, event events.OrderEvent) error {
	settings, err := n.settings.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		defaults := models.DefaultSettings()
		settings, err = &defaults, nil
	}
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	orderID, err := primitive.ObjectIDFromHex(event.OrderID)
	if err != nil {
		return fmt.Errorf("event order id: %w", err)
	}
	short := ShortOrderID(orderID)

	if settings.Notifications.EmailAdmin && event.Type == events.OrderPlaced && settings.General.SupportEmail != "" {
		body := fmt.Sprintf("A new %s order #%s for %.2f was placed.", event.PaymentMethod, short, event.Amount)
		if err := n.email.SendOrderNotification(ctx, settings.General.SupportEmail, settings.General.SiteTitle, "New order #"+short, body); err != nil {
			return fmt.Errorf("notify admin: %w", err)
		}
	}

	if !settings.Notifications.EmailUsers {
		return nil
	}
	userID, err := primitive.ObjectIDFromHex(event.UserID)
	if err != nil {
		return fmt.Errorf("event user id: %w", err)
	}
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	subject, body := customerNotice(event, short)
	if subject == "" {
		return nil
	}
	return n.email.SendOrderNotification(ctx, user.Email, user.Name, subject, body)
}

func customerNotice(event events.OrderEvent, short string) (subject, body string) {
	switch event.Type {
	case events.OrderPlaced:
		return "Order #" + short + " received",
			fmt.Sprintf("Thanks for your order. We have received order #%s totalling %.2f.", short, event.Amount)
	case events.OrderPaid:
		return "Payment received for order #" + short,
			fmt.Sprintf("Your payment of %.2f for order #%s has been confirmed.", event.Amount, short)
	case events.OrderStatusUpdated:
		return "Order #" + short + " is " + event.Status,
			fmt.Sprintf("Your order #%s is now %s.", short, event.Status)
	}
	return "", ""
}
