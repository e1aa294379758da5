package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"forever-ecommerce/cache"
	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/repository/repotest"
	"forever-ecommerce/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	svc    *AccountService
	users  *repotest.Users
	store  *cache.Store
	mr     *miniredis.Miniredis
	email  *fakeEmail
	tokens *utils.JWTManager
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	store, mr := newTestStore(t)
	f := &accountFixture{
		users:  repotest.NewUsers(),
		store:  store,
		mr:     mr,
		email:  &fakeEmail{},
		tokens: utils.NewJWTManager("test-secret"),
	}
	f.svc = NewAccountService(f.users, store, f.email, f.tokens, utils.NewValidator()).
		WithOTPGenerator(fixedOTP("123456"))
	return f
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "  Asha   Rao ",
		Email:    " Asha@Example.com ",
		Password: "secret123",
		Phone:    "9876543210",
		Address: models.Address{
			Street:  " 12  MG Road",
			City:    "Pune",
			State:   "MH",
			Zip:     "411001",
			Country: "IN",
		},
	}
}

func TestAccountService_RegisterVerifyLogin(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	id, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	user, err := f.users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.Address{Street: "12 MG Road", City: "Pune", State: "MH", Zip: "411001", Country: "IN"}, user.Address[0])
	assert.False(t, user.IsVerified)
	assert.True(t, utils.CheckPassword(user.Password, "secret123"))

	mail := f.email.last()
	assert.Equal(t, "verify", mail.kind)
	assert.Equal(t, "asha@example.com", mail.to)
	assert.Equal(t, "123456", mail.body)

	assert.Equal(t, cache.OTPTTL, f.mr.TTL("otp:asha@example.com"))
	assert.Equal(t, cache.CooldownTTL, f.mr.TTL("cooldown:asha@example.com"))

	_, err = f.svc.Login(ctx, "asha@example.com", "secret123")
	requireStatus(t, err, http.StatusUnauthorized, "Please verify your email before logging in.")

	_, err = f.svc.VerifyOTP(ctx, "asha@example.com", "000000")
	requireStatus(t, err, http.StatusBadRequest, "Invalid OTP.")

	verified, err := f.svc.VerifyOTP(ctx, "ASHA@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.Password)
	assert.False(t, f.mr.Exists("otp:asha@example.com"))
	assert.False(t, f.mr.Exists("cooldown:asha@example.com"))

	_, err = f.svc.Login(ctx, "asha@example.com", "wrong-pass")
	requireStatus(t, err, http.StatusUnauthorized, "Invalid credentials.")

	token, err := f.svc.Login(ctx, "asha@example.com", "secret123")
	require.NoError(t, err)
	claims, err := f.tokens.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.WithinDuration(t, time.Now().Add(utils.UserTokenTTL), time.Unix(claims.ExpiresAt, 0), time.Minute)
}

func TestAccountService_RegisterRejects(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, validRegistration())
	requireStatus(t, err, http.StatusBadRequest, "User already exists with this email.")

	bad := validRegistration()
	bad.Email = "other@example.com"
	bad.Phone = "12"
	bad.Address.City = ""
	_, err = f.svc.Register(ctx, bad)
	apiErr := requireStatus(t, err, http.StatusBadRequest, "Validation failed")
	assert.Contains(t, apiErr.Errors, "phone")
	assert.Contains(t, apiErr.Errors, "address.city")
}

func TestAccountService_RegisterDuringCooldown(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mr.Set("cooldown:asha@example.com", "true"))

	id, err := f.svc.Register(ctx, validRegistration())
	apiErr := requireStatus(t, err, http.StatusTooManyRequests, "")
	assert.Equal(t, id.Hex(), apiErr.Data["userId"])

	_, err = f.users.FindByID(ctx, id)
	require.NoError(t, err, "user is created even when no code is sent")
	assert.Empty(t, f.email.sent)
	assert.False(t, f.mr.Exists("otp:asha@example.com"))
}

func TestAccountService_VerifyExpired(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	f.mr.FastForward(cache.OTPTTL + time.Second)

	_, err = f.svc.VerifyOTP(ctx, "asha@example.com", "123456")
	requireStatus(t, err, http.StatusBadRequest, "OTP expired or not found.")
}

func TestAccountService_ResendOTP(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	err = f.svc.ResendOTP(ctx, "asha@example.com")
	requireStatus(t, err, http.StatusTooManyRequests, "")
	assert.Len(t, f.email.sent, 1)

	f.mr.FastForward(cache.CooldownTTL + time.Second)
	f.svc.WithOTPGenerator(fixedOTP("654321"))
	require.NoError(t, f.svc.ResendOTP(ctx, "asha@example.com"))
	assert.Len(t, f.email.sent, 2)

	code, err := f.mr.Get("otp:asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)

	err = f.svc.ResendOTP(ctx, "nobody@example.com")
	requireStatus(t, err, http.StatusNotFound, "User not found.")

	_, err = f.svc.VerifyOTP(ctx, "asha@example.com", "654321")
	require.NoError(t, err)
	err = f.svc.ResendOTP(ctx, "asha@example.com")
	requireStatus(t, err, http.StatusBadRequest, "User is already verified.")
}

func TestAccountService_ForgotAndResetPassword(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	id, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.NoError(t, f.users.SetVerified(ctx, id))

	f.svc.WithOTPGenerator(fixedOTP("777777"))
	require.NoError(t, f.svc.ForgotPassword(ctx, "asha@example.com"))
	assert.Equal(t, "reset", f.email.last().kind)
	assert.Equal(t, cache.ResetTTL, f.mr.TTL("reset:asha@example.com"))

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Email: "asha@example.com", OTP: "111111", NewPassword: "newsecret1"})
	requireStatus(t, err, http.StatusBadRequest, "Invalid or expired OTP.")

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Email: "asha@example.com", OTP: "777777", NewPassword: "short"})
	requireStatus(t, err, http.StatusBadRequest, "Password must be at least 8 characters.")

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Email: "asha@example.com", OTP: "777777", NewPassword: "newsecret1"}))
	assert.False(t, f.mr.Exists("reset:asha@example.com"))

	_, err = f.svc.Login(ctx, "asha@example.com", "newsecret1")
	require.NoError(t, err)
}

func TestAccountService_RegisterRejectsBlankFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *RegisterRequest)
		field string
	}{
		{"blank street", func(r *RegisterRequest) { r.Address.Street = "   " }, "address.street"},
		{"blank city", func(r *RegisterRequest) { r.Address.City = "\t" }, "address.city"},
		{"blank name", func(r *RegisterRequest) { r.Name = "  " }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccountFixture(t)
			req := validRegistration()
			tt.edit(&req)

			_, err := f.svc.Register(context.Background(), req)
			apiErr := requireStatus(t, err, http.StatusBadRequest, "")
			assert.Contains(t, apiErr.Errors, tt.field)

			_, err = f.users.FindByEmail(context.Background(), "asha@example.com")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestAccountService_UpdateProfile(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	id, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err := f.svc.UpdateProfile(ctx, id, ProfileUpdate{Name: " Asha  McRae "})
	require.NoError(t, err)
	assert.Equal(t, "Asha McRae", user.Name)
	assert.Equal(t, "9876543210", user.Phone)
	assert.Len(t, user.Address, 1)

	_, err = f.svc.UpdateProfile(ctx, id, ProfileUpdate{Phone: "abc"})
	requireStatus(t, err, http.StatusBadRequest, "Validation failed")
}

func TestAccountService_AdminDirectory(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"Asha", "Bala", "Chitra"} {
		clock := base.Add(time.Duration(i) * time.Hour)
		f.users.Clock = func() time.Time { return clock }
		u := &models.User{Name: name, Email: name + "@example.com", Phone: fmt.Sprintf("98765432%02d", i)}
		require.NoError(t, f.users.Create(ctx, u))
		ids = append(ids, u.ID.Hex())
	}

	page, err := f.svc.ListUsers(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "Chitra", page.Users[0].Name)

	page, err = f.svc.ListUsers(ctx, 1, 0, "bala")
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "Bala", page.Users[0].Name)

	_, err = f.svc.UpdateUser(ctx, ids[0], ContactUpdate{Name: "Asha", Email: "bala@example.com", Phone: "9876543299"})
	requireStatus(t, err, http.StatusBadRequest, "Email already in use by another account")

	_, err = f.svc.UpdateUser(ctx, ids[0], ContactUpdate{Name: "Asha"})
	requireStatus(t, err, http.StatusBadRequest, "Name, email and phone are required")

	updated, err := f.svc.UpdateUser(ctx, ids[0], ContactUpdate{Name: "Asha K", Email: "ASHA.K@example.com", Phone: "9876543299"})
	require.NoError(t, err)
	assert.Equal(t, "asha.k@example.com", updated.Email)

	require.NoError(t, f.mr.Set("user:"+ids[1], "cached"))
	require.NoError(t, f.svc.DeleteUser(ctx, ids[1]))
	assert.False(t, f.mr.Exists("user:"+ids[1]))

	err = f.svc.DeleteUser(ctx, ids[1])
	requireStatus(t, err, http.StatusNotFound, "User not found")

	err = f.svc.DeleteUser(ctx, "not-an-id")
	requireStatus(t, err, http.StatusBadRequest, "Invalid user id")
}
