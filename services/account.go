package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"forever-ecommerce/cache"
	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userPasswordCost = 10

type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Phone    string         `json:"phone" validate:"required,phone"`
	Address  models.Address `json:"address"`
}

type ProfileUpdate struct {
	Name    string           `json:"name" validate:"omitempty"`
	Phone   string           `json:"phone" validate:"omitempty,phone"`
	Address []models.Address `json:"address" validate:"omitempty,dive"`
}

type ContactUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type UserPage struct {
	Users       []models.User `json:"users"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// AccountService runs customer registration, email verification, login and
// the admin user directory.
type AccountService struct {
	users     repository.UserRepository
	kv        KeyValueStore
	email     EmailSender
	tokens    TokenIssuer
	validator *utils.Validator
	otp       func() (string, error)
}

func NewAccountService(users repository.UserRepository, kv KeyValueStore, email EmailSender, tokens TokenIssuer, v *utils.Validator) *AccountService {
	return &AccountService{
		users:     users,
		kv:        kv,
		email:     email,
		tokens:    tokens,
		validator: v,
		otp:       utils.GenerateOTP,
	}
}

// WithOTPGenerator replaces the code generator.
func (s *AccountService) WithOTPGenerator(gen func() (string, error)) *AccountService {
	s.otp = gen
	return s
}

// Register creates an unverified user and emails a verification code. When
// a cooldown marker is already present the user is still created but no
// code is sent and a 429 carrying the new user id is returned.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (primitive.ObjectID, error) {
	req.Name = utils.CleanText(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = utils.NormalizeAddress(req.Address)
	if err := s.validator.Struct(req); err != nil {
		return primitive.NilObjectID, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return primitive.NilObjectID, utils.BadRequest("User already exists with this email.")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return primitive.NilObjectID, err
	}

	hash, err := utils.HashPassword(req.Password, userPasswordCost)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		Address:  []models.Address{req.Address},
		CartData: models.CartData{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return primitive.NilObjectID, utils.BadRequest("User already exists with this email or phone.")
		}
		return primitive.NilObjectID, err
	}

	cooling, err := s.kv.Exists(ctx, cache.CooldownKey(user.Email))
	if err != nil {
		return user.ID, err
	}
	if cooling {
		apiErr := utils.TooManyRequests("Please wait a few seconds before trying again.")
		apiErr.Data = map[string]any{"userId": user.ID.Hex()}
		return user.ID, apiErr
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return user.ID, err
	}
	return user.ID, nil
}

func (s *AccountService) sendVerification(ctx context.Context, user *models.User) error {
	code, err := s.otp()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.kv.Set(ctx, cache.OTPKey(user.Email), code, cache.OTPTTL); err != nil {
		return err
	}
	if err := s.email.SendVerificationOTP(ctx, user.Email, user.Name, code); err != nil {
		return err
	}
	return s.kv.Set(ctx, cache.CooldownKey(user.Email), "true", cache.CooldownTTL)
}

// VerifyOTP flips the user to verified when the cached code matches.
func (s *AccountService) VerifyOTP(ctx context.Context, email, otp string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	saved, ok, err := s.kv.Get(ctx, cache.OTPKey(email))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.BadRequest("OTP expired or not found.")
	}
	if otp != saved {
		return nil, utils.BadRequest("Invalid OTP.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "User not found.")
	}
	if err := s.users.SetVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.kv.Delete(ctx, cache.OTPKey(email), cache.CooldownKey(email)); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.Password = ""
	return user, nil
}

// ResendOTP issues a fresh code unless the user is verified or cooling down.
// A cooldown leaves the pending code untouched.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return utils.BadRequest("Email is required.")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "User not found.")
	}
	if user.IsVerified {
		return utils.BadRequest("User is already verified.")
	}
	cooling, err := s.kv.Exists(ctx, cache.CooldownKey(email))
	if err != nil {
		return err
	}
	if cooling {
		return utils.TooManyRequests("Please wait before requesting a new OTP.")
	}
	return s.sendVerification(ctx, user)
}

// Login checks credentials of a verified user and returns a 7 day token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return "", notFound(err, "User does not exist.")
	}
	if !user.IsVerified {
		return "", utils.Unauthorized("Please verify your email before logging in.")
	}
	if !utils.CheckPassword(user.Password, password) {
		return "", utils.Unauthorized("Invalid credentials.")
	}
	return s.tokens.GenerateJWT(user.ID.Hex(), "user", utils.UserTokenTTL)
}

func (s *AccountService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found.")
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile replaces the fields present in the request; empty fields keep their value.
func (s *AccountService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req ProfileUpdate) (*models.User, error) {
	req.Name = utils.CleanText(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	for i := range req.Address {
		req.Address[i] = utils.NormalizeAddress(req.Address[i])
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found.")
	}

	name, phone, addresses := current.Name, current.Phone, current.Address
	if req.Name != "" {
		name = req.Name
	}
	if req.Phone != "" {
		phone = req.Phone
	}
	if req.Address != nil {
		addresses = req.Address
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, phone, addresses)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.BadRequest("Phone number already in use by another account.")
		}
		return nil, notFound(err, "User not found.")
	}
	return user, nil
}

// ForgotPassword emails a reset code valid for five minutes.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return utils.BadRequest("Email is required.")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "User not found.")
	}
	code, err := s.otp()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.kv.Set(ctx, cache.ResetKey(email), code, cache.ResetTTL); err != nil {
		return err
	}
	return s.email.SendPasswordResetOTP(ctx, email, user.Name, code)
}

func (s *AccountService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.OTP == "" || req.NewPassword == "" {
		return utils.BadRequest("All fields are required.")
	}
	if len(req.NewPassword) < 8 {
		return utils.BadRequest("Password must be at least 8 characters.")
	}
	saved, ok, err := s.kv.Get(ctx, cache.ResetKey(email))
	if err != nil {
		return err
	}
	if !ok || saved != req.OTP {
		return utils.BadRequest("Invalid or expired OTP.")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "User not found.")
	}
	hash, err := utils.HashPassword(req.NewPassword, userPasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	return s.kv.Delete(ctx, cache.ResetKey(email))
}

// ListUsers returns one page of customers for the admin panel.
func (s *AccountService) ListUsers(ctx context.Context, page, limit int, search string) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	users, total, err := s.users.List(ctx, repository.UserFilter{Page: page, Limit: limit, Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, err
	}
	return &UserPage{
		Users:       users,
		TotalPages:  repository.TotalPages(total, limit),
		CurrentPage: page,
	}, nil
}

func (s *AccountService) UpdateUser(ctx context.Context, userIDHex string, req ContactUpdate) (*models.User, error) {
	userID, err := parseID(userIDHex, "user id")
	if err != nil {
		return nil, err
	}
	name, email, phone := utils.CleanText(req.Name), utils.NormalizeEmail(req.Email), strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, utils.BadRequest("Name, email and phone are required")
	}
	if err := s.validator.Struct(struct {
		Email string `json:"email" validate:"email"`
		Phone string `json:"phone" validate:"phone"`
	}{email, phone}); err != nil {
		return nil, err
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != userID {
		return nil, utils.BadRequest("Email already in use by another account")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.users.UpdateContact(ctx, userID, name, email, phone)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.BadRequest("Email or phone already in use by another account")
		}
		return nil, notFound(err, "User not found")
	}
	user.CartData = nil
	return user, nil
}

// DeleteUser removes a customer and their cached session.
func (s *AccountService) DeleteUser(ctx context.Context, userIDHex string) error {
	userID, err := parseID(userIDHex, "user id")
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return notFound(err, "User not found")
	}
	if err := s.kv.Delete(ctx, cache.SessionKey(userIDHex)); err != nil {
		slog.WarnContext(ctx, "failed to clear user session", "userId", userIDHex, "error", err)
	}
	return nil
}

// StatusOf extracts the HTTP status from an error returned by the services.
func StatusOf(err error) int {
	if apiErr, ok := utils.AsAPIError(err); ok {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
