package domain

import "time"

// Profile is the identity record for a principal. The account itself is
// owned by the identity provider; the profile fields are mutable by the
// user or an admin.
type Profile struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     *string
	Department   *string
	JobTitle     *string
	Phone        *string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the best available human label for the profile.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}
