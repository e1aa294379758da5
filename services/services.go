// Package services implements the storefront and back-office use cases on
// top of the repositories, the key-value store and the external gateways.
package services

import (
	"context"
	"errors"
	"time"

	"forever-ecommerce/events"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KeyValueStore is the subset of the cache adapter the services use.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EmailSender delivers the transactional emails.
type EmailSender interface {
	SendVerificationOTP(ctx context.Context, toEmail, name, otp string) error
	SendPasswordResetOTP(ctx context.Context, toEmail, name, otp string) error
	SendOrderNotification(ctx context.Context, toEmail, name, subject, body string) error
}

type TokenIssuer interface {
	GenerateJWT(subject, role string, ttl time.Duration) (string, error)
}

var (
	_ EmailSender      = (*utils.EmailService)(nil)
	_ TokenIssuer      = (*utils.JWTManager)(nil)
	_ events.Publisher = events.NopPublisher{}
)

// parseID converts a hex id from a request into an ObjectID, reporting 400 on garbage.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("Invalid " + what)
	}
	return id, nil
}

// notFound maps repository.ErrNotFound to a 404 with message and passes other errors through.
func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound(message)
	}
	return err
}
