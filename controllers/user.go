package controllers

import (
	"net/http"

	"forever-ecommerce/services"
	"forever-ecommerce/utils"

	"github.com/gorilla/mux"
)

// UserController handles customer account requests and the admin user directory
type UserController struct {
	Accounts *services.AccountService
	Errors   utils.ErrorResponder
}

// NewUserController creates a new UserController
func NewUserController(accounts *services.AccountService, errs utils.ErrorResponder) *UserController {
	return &UserController{Accounts: accounts, Errors: errs}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}

	userID, err := uc.Accounts.Register(r.Context(), req)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}

	utils.Success(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully. OTP sent to email for verification.",
		"userId":  userID.Hex(),
	})
}

// VerifyOTP marks the account verified when the emailed code matches
func (uc *UserController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	if req.Email == "" || req.OTP == "" {
		utils.Fail(w, http.StatusBadRequest, "Email and OTP are required.")
		return
	}

	user, err := uc.Accounts.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Email verified successfully", "user": user})
}

func (uc *UserController) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	if err := uc.Accounts.ResendOTP(r.Context(), req.Email); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "OTP resent successfully."})
}

// Login authenticates a verified user and returns a JWT token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &creds); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}

	token, err := uc.Accounts.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	user, err := uc.Accounts.Profile(r.Context(), userID)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"user": user})
}

func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	var req services.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	user, err := uc.Accounts.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"user": user})
}

func (uc *UserController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	if err := uc.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "OTP sent to your email."})
}

func (uc *UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	if err := uc.Accounts.ResetPassword(r.Context(), req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Password reset successful."})
}

// ListUsers returns one page of customers (admin)
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := uc.Accounts.ListUsers(r.Context(),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10),
		r.URL.Query().Get("search"),
	)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{
		"users":       page.Users,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req services.ContactUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	user, err := uc.Accounts.UpdateUser(r.Context(), mux.Vars(r)["userId"], req)
	if err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"user": user})
}

func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := uc.Accounts.DeleteUser(r.Context(), mux.Vars(r)["userId"]); err != nil {
		uc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}
