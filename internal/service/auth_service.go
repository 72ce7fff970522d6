package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-console/internal/auth"
	"github.com/spec-kit/itsm-console/internal/cache"
	"github.com/spec-kit/itsm-console/internal/config"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/repository"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// AuthService is the identity provider boundary: account creation, login,
// password changes, and profile updates.
type AuthService struct {
	profiles   repository.ProfileRepository
	views      cache.ViewCache
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	ProfileRepo repository.ProfileRepository
	Views       cache.ViewCache
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		profiles:   deps.ProfileRepo,
		views:      deps.Views,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, email, password string, fullName *string) (*domain.Profile, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// Login authenticates a principal by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// Logout no-ops for the stateless JWT approach; sign-out is the client
// discarding its token and tearing down the session object.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ProfileUpdateInput carries the mutable profile fields.
type ProfileUpdateInput struct {
	FullName   *string
	Department *string
	JobTitle   *string
	Phone      *string
	AvatarURL  *string
}

// UpdateProfile edits profile fields. The owner or an admin may edit.
func (s *AuthService) UpdateProfile(ctx context.Context, actor Actor, profileID string, input ProfileUpdateInput) (*domain.Profile, error) {
	if actor.ID != profileID && !actor.Facts.IsAdmin {
		return nil, apperrors.NewPermissionDenied("cannot edit another user's profile")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.FullName != nil {
		profile.FullName = input.FullName
	}
	if input.Department != nil {
		profile.Department = input.Department
	}
	if input.JobTitle != nil {
		profile.JobTitle = input.JobTitle
	}
	if input.Phone != nil {
		profile.Phone = input.Phone
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = input.AvatarURL
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.views != nil {
		_ = s.views.Invalidate(ctx, cache.KeyUserRoles)
	}
	return profile, nil
}

// ChangePassword verifies the current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("new password required", nil)
	}

	profile, err := s.profiles.GetByID(ctx, principalID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, currentPassword); err != nil {
		return apperrors.NewPermissionDenied("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	profile.PasswordHash = hash
	return apperrors.MapError(s.profiles.Update(ctx, profile))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
