package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const (
	UserContextKey  = contextKey("user")
	AdminContextKey = contextKey("admin")
)

type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

type AdminAuthenticator interface {
	Authenticate(ctx context.Context, adminID string) (*models.Admin, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Auth holds what the authentication middlewares need to resolve a bearer token.
type Auth struct {
	tokens TokenParser
	admins AdminAuthenticator
	users  UserFinder
	errs   utils.ErrorResponder
}

func NewAuth(tokens TokenParser, admins AdminAuthenticator, users UserFinder, errs utils.ErrorResponder) *Auth {
	return &Auth{tokens: tokens, admins: admins, users: users, errs: errs}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware verifies JWT tokens and attaches the claims to the context
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			utils.Fail(w, http.StatusUnauthorized, "not authorized")
			return
		}
		claims, err := a.tokens.ParseJWT(token)
		if err != nil || claims.Subject == "" {
			utils.Fail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware ensures the token carries the admin role and the admin still exists.
// It must run after AuthMiddleware.
func (a *Auth) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			utils.Fail(w, http.StatusUnauthorized, "not authorized")
			return
		}
		if claims.Role != models.RoleAdmin {
			utils.Fail(w, http.StatusForbidden, "forbidden")
			return
		}
		admin, err := a.admins.Authenticate(r.Context(), claims.Subject)
		if err != nil {
			a.errs.Respond(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EnsureVerified rejects customers whose email is not verified yet. It must run after AuthMiddleware.
func (a *Auth) EnsureVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFrom(r.Context())
		if !ok {
			utils.Fail(w, http.StatusUnauthorized, "not authorized")
			return
		}
		user, err := a.users.FindByID(r.Context(), userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			a.errs.Respond(w, r, err)
			return
		}
		if err != nil || !user.IsVerified {
			utils.Fail(w, http.StatusForbidden, "Please verify your email before placing an order.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the token subject as an ObjectID.
func UserIDFrom(ctx context.Context) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func AdminFrom(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(AdminContextKey).(*models.Admin)
	return admin, ok && admin != nil
}
