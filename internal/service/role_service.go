package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itsm-console/internal/cache"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/events"
	"github.com/spec-kit/itsm-console/internal/repository"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// RoleService manages role grants. Grant mutation is admin only.
type RoleService struct {
	roles      repository.RoleRepository
	profiles   repository.ProfileRepository
	views      cache.ViewCache
	dispatcher events.Dispatcher
}

// RoleDependencies bundles collaborators for the role service.
type RoleDependencies struct {
	RoleRepo    repository.RoleRepository
	ProfileRepo repository.ProfileRepository
	Views       cache.ViewCache
	Dispatcher  events.Dispatcher
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{
		roles:      deps.RoleRepo,
		profiles:   deps.ProfileRepo,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
	}
}

// UserWithRoles pairs a profile with its grant list for the admin view.
type UserWithRoles struct {
	domain.Profile
	Roles []domain.Role `json:"roles"`
}

// AddGrant grants a role to a user. A duplicate (user, role) pair is a
// conflict, not a silent success, so the caller can say "already has this
// role" instead of "bad input".
func (s *RoleService) AddGrant(ctx context.Context, actor Actor, userID string, role domain.Role) (*domain.RoleGrant, error) {
	if !actor.Facts.IsAdmin {
		return nil, apperrors.NewPermissionDenied("admin role required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return nil, apperrors.MapError(err)
	}

	grant := &domain.RoleGrant{UserID: userID, Role: role}
	if err := s.roles.Insert(ctx, grant); err != nil {
		mapped := apperrors.ToDomainError(err)
		if mapped.Code == apperrors.CodeConflict {
			return nil, apperrors.NewConflict("user already has this role", map[string]any{"user_id": userID, "role": string(role)})
		}
		return nil, mapped
	}

	s.invalidate(ctx)
	s.publish(ctx, actor, events.EventRoleGranted, userID, role)
	return grant, nil
}

// RemoveGrant revokes a role from a user. Admin only.
func (s *RoleService) RemoveGrant(ctx context.Context, actor Actor, userID string, role domain.Role) error {
	if !actor.Facts.IsAdmin {
		return apperrors.NewPermissionDenied("admin role required")
	}
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	if err := s.roles.Delete(ctx, userID, role); err != nil {
		return apperrors.MapError(err)
	}

	s.invalidate(ctx)
	s.publish(ctx, actor, events.EventRoleRevoked, userID, role)
	return nil
}

// ListUsersWithRoles returns every profile joined with its grants. Admin
// only.
func (s *RoleService) ListUsersWithRoles(ctx context.Context, actor Actor) ([]UserWithRoles, error) {
	if !actor.Facts.IsAdmin {
		return nil, apperrors.NewPermissionDenied("admin role required")
	}

	if s.views != nil {
		var cached []UserWithRoles
		if hit, err := s.views.Get(ctx, cache.KeyUserRoles, &cached); err == nil && hit {
			return cached, nil
		}
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	grants, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	grantsByUser := make(map[string][]domain.Role)
	for _, grant := range grants {
		grantsByUser[grant.UserID] = append(grantsByUser[grant.UserID], grant.Role)
	}

	result := make([]UserWithRoles, 0, len(profiles))
	for _, profile := range profiles {
		profile.PasswordHash = ""
		result = append(result, UserWithRoles{Profile: profile, Roles: grantsByUser[profile.ID]})
	}

	if s.views != nil {
		_ = s.views.Set(ctx, cache.KeyUserRoles, result, time.Minute)
	}
	return result, nil
}

func (s *RoleService) invalidate(ctx context.Context) {
	if s.views == nil {
		return
	}
	_ = s.views.Invalidate(ctx, cache.KeyUserRoles)
}

func (s *RoleService) publish(ctx context.Context, actor Actor, eventType events.EventType, userID string, role domain.Role) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload:   events.RoleChangedPayload{UserID: userID, Role: role},
	})
}
