package dto

import (
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/service"
)

// AddRoleRequest payload.
type AddRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin manager agent user"`
}

// UpdateProfileRequest payload. Nil fields are left untouched.
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
	JobTitle   *string `json:"job_title"`
	Phone      *string `json:"phone"`
	AvatarURL  *string `json:"avatar_url"`
}

// UserWithRolesResponse pairs a profile with its granted roles.
type UserWithRolesResponse struct {
	ProfileResponse
	Roles       []string `json:"roles"`
	PrimaryRole string   `json:"primary_role"`
}

// FromUserWithRoles maps a service projection.
func FromUserWithRoles(u service.UserWithRoles) UserWithRolesResponse {
	roles := make([]string, 0, len(u.Roles))
	grants := make([]domain.RoleGrant, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
		grants = append(grants, domain.RoleGrant{UserID: u.ID, Role: r})
	}
	facts := domain.DeriveFacts(grants)
	return UserWithRolesResponse{
		ProfileResponse: FromProfile(&u.Profile),
		Roles:           roles,
		PrimaryRole:     string(facts.PrimaryRole),
	}
}
