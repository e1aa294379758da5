package controllers

import (
	"net/http"

	"forever-ecommerce/middleware"
	"forever-ecommerce/services"
	"forever-ecommerce/utils"
)

// AdminController handles back-office authentication, profile and dashboard requests
type AdminController struct {
	Admins    *services.AdminService
	Analytics *services.AnalyticsService
	Errors    utils.ErrorResponder
}

func NewAdminController(admins *services.AdminService, analytics *services.AnalyticsService, errs utils.ErrorResponder) *AdminController {
	return &AdminController{Admins: admins, Analytics: analytics, Errors: errs}
}

func (ac *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &creds); err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	token, err := ac.Admins.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"token": token})
}

// Setup creates the first admin account. The request must carry the setup-secret header.
func (ac *AdminController) Setup(w http.ResponseWriter, r *http.Request) {
	var req services.AdminSetupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	admin, err := ac.Admins.Setup(r.Context(), r.Header.Get("setup-secret"), req)
	if err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusCreated, map[string]any{"message": "Admin created successfully", "admin": admin})
}

func (ac *AdminController) GetProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "not authorized")
		return
	}
	profile, err := ac.Admins.Profile(r.Context(), admin.ID)
	if err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"admin": profile})
}

func (ac *AdminController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "not authorized")
		return
	}
	var req services.AdminProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	updated, err := ac.Admins.UpdateProfile(r.Context(), admin.ID, req)
	if err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"admin": updated, "message": "Profile updated successfully"})
}

// Summary returns the dashboard analytics for ?range=week|month|quarter
func (ac *AdminController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := ac.Analytics.Summary(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		ac.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"data": summary})
}
