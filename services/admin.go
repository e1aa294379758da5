package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminSetupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminProfileUpdate struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AdminService authenticates back-office accounts and bootstraps the first one.
type AdminService struct {
	admins      repository.AdminRepository
	tokens      TokenIssuer
	validator   *utils.Validator
	setupSecret string
	now         func() time.Time
}

func NewAdminService(admins repository.AdminRepository, tokens TokenIssuer, v *utils.Validator, setupSecret string) *AdminService {
	return &AdminService{
		admins:      admins,
		tokens:      tokens,
		validator:   v,
		setupSecret: setupSecret,
		now:         time.Now,
	}
}

// Login returns a one day admin token. Failed attempts are counted but the lock flag is not enforced.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.admins.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", utils.Unauthorized("Cannot find Admin")
		}
		return "", err
	}
	if !utils.CheckPassword(admin.Password, password) {
		if err := s.admins.RecordFailedLogin(ctx, admin.ID); err != nil {
			slog.WarnContext(ctx, "failed to record failed admin login", "adminId", admin.ID.Hex(), "error", err)
		}
		return "", utils.Unauthorized("Wrong Password! Invalid credentials")
	}

	token, err := s.tokens.GenerateJWT(admin.ID.Hex(), models.RoleAdmin, utils.AdminTokenTTL)
	if err != nil {
		return "", err
	}
	if err := s.admins.RecordLogin(ctx, admin.ID, s.now().UTC()); err != nil {
		slog.WarnContext(ctx, "failed to record admin login", "adminId", admin.ID.Hex(), "error", err)
	}
	return token, nil
}

// Authenticate loads the admin referenced by a verified token.
func (s *AdminService) Authenticate(ctx context.Context, adminIDHex string) (*models.Admin, error) {
	id, err := primitive.ObjectIDFromHex(adminIDHex)
	if err != nil {
		return nil, utils.Unauthorized("invalid or expired token")
	}
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.Unauthorized("admin not found, please log in again")
		}
		return nil, err
	}
	admin.Password = ""
	return admin, nil
}

func (s *AdminService) Profile(ctx context.Context, adminID primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return nil, notFound(err, "Admin not found")
	}
	admin.Password = ""
	return admin, nil
}

func (s *AdminService) UpdateProfile(ctx context.Context, adminID primitive.ObjectID, req AdminProfileUpdate) (*models.Admin, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.BadRequest("Name is required")
	}
	admin, err := s.admins.UpdateProfile(ctx, adminID, name, strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, notFound(err, "Admin not found")
	}
	return admin, nil
}

// Setup creates the first admin when the shared secret matches and no admin exists yet.
func (s *AdminService) Setup(ctx context.Context, secret string, req AdminSetupRequest) (*models.Admin, error) {
	if s.setupSecret == "" || secret != s.setupSecret {
		return nil, utils.Unauthorized("Unauthorized admin setup attempt")
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, utils.Forbidden("Admin already exists")
	}
	return s.create(ctx, req, models.RoleAdmin)
}

// Seed creates a superadmin with the given credentials unless that email already exists.
// It reports whether a new account was created.
func (s *AdminService) Seed(ctx context.Context, email, password string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("INITIAL_ADMIN_EMAIL and INITIAL_ADMIN_PASSWORD must be set")
	}
	if _, err := s.admins.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.create(ctx, AdminSetupRequest{Name: "Super Admin", Email: email, Password: password}, models.RoleSuperAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AdminService) create(ctx context.Context, req AdminSetupRequest, role string) (*models.Admin, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password, utils.AdminPasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &models.Admin{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.BadRequest("Admin already exists with this email")
		}
		return nil, err
	}
	admin.Password = ""
	return admin, nil
}
