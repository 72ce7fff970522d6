package dto

import (
	"time"

	"github.com/spec-kit/itsm-console/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName *string `json:"full_name"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// SetModeRequest payload for explicit surface selection.
type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=si user"`
}

// ProfileResponse is the identity record without credentials.
type ProfileResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   *string   `json:"full_name"`
	Department *string   `json:"department"`
	JobTitle   *string   `json:"job_title"`
	Phone      *string   `json:"phone"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthResponse carries a signed token and the profile.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}

// SessionResponse describes the caller's resolved session.
type SessionResponse struct {
	Profile       ProfileResponse `json:"profile"`
	Roles         []string        `json:"roles"`
	PrimaryRole   string          `json:"primary_role"`
	IsAdmin       bool            `json:"is_admin"`
	IsManager     bool            `json:"is_manager"`
	IsAgent       bool            `json:"is_agent"`
	IsITStaff     bool            `json:"is_it_staff"`
	IsFrontOffice bool            `json:"is_front_office"`
	Mode          string          `json:"mode"`
	CanSwitchMode bool            `json:"can_switch_mode"`
}

// FromProfile maps a domain profile.
func FromProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Department: p.Department,
		JobTitle:   p.JobTitle,
		Phone:      p.Phone,
		AvatarURL:  p.AvatarURL,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
