// Package funnel contains the core business logic and use cases for the review funnel
package funnel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/app/services"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	EnsureAdmin(ctx context.Context, username, password string) (*models.Admin, error)
}

// AdminAuthFlowImpl verifies admin credentials and issues session tokens
type AdminAuthFlowImpl struct {
	adminRepo    repository.AdminRepository
	tokenService services.TokenService
	tokenTTL     time.Duration
}

func NewAdminAuthFlow(adminRepo repository.AdminRepository, tokenService services.TokenService, tokenTTL time.Duration) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		adminRepo:    adminRepo,
		tokenService: tokenService,
		tokenTTL:     tokenTTL,
	}
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	// Validate request
	if req == nil || len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}

	// Lookup admin
	admin, err := af.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	// Generate admin tokens
	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	// Last-login bookkeeping must not fail the login
	_ = af.adminRepo.UpdateLastLogin(ctx, admin.ID)

	return &dto.AdminLoginResponse{
		Admin: dto.AdminDTO{
			ID:        admin.ID,
			UUID:      admin.UUID.String(),
			Username:  admin.Username,
			IsActive:  admin.IsActive,
			CreatedAt: admin.CreatedAt.Format(time.RFC3339),
		},
		Session: dto.AdminSessionDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(af.tokenTTL.Seconds()),
			TokenType:    "Bearer",
			CreatedAt:    utils.UTCNowFormat(time.RFC3339),
		},
	}, nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
// An existing account is left untouched so password rotations done through
// the database survive restarts.
func (af *AdminAuthFlowImpl) EnsureAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	if username == "" || password == "" {
		return nil, NewBusinessError("ADMIN_BOOTSTRAP_VALIDATION_FAILED", "Bootstrap admin credentials are required", ErrAdminNotFound)
	}

	existing, err := af.adminRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("ADMIN_BOOTSTRAP_FAILED", "Failed to hash admin password", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := af.adminRepo.Save(ctx, admin); err != nil {
		return nil, NewBusinessError("ADMIN_BOOTSTRAP_FAILED", "Failed to create bootstrap admin", err)
	}

	return admin, nil
}
