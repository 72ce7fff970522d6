package dto

import (
	"time"

	"github.com/spec-kit/itsm-console/internal/service"
)

// AssignAssetRequest payload. A nil user clears the assignment.
type AssignAssetRequest struct {
	UserID *string `json:"user_id"`
}

// AssetResponse is the inventory view of an asset.
type AssetResponse struct {
	ID           string         `json:"id"`
	Tag          string         `json:"tag"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	AssignedTo   *string        `json:"assigned_to"`
	AssignedUser *PartyResponse `json:"assigned_user,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// FromAssetView maps a service projection.
func FromAssetView(v service.AssetView) AssetResponse {
	resp := AssetResponse{
		ID:         v.ID,
		Tag:        v.Tag,
		Name:       v.Name,
		Type:       v.Type,
		Status:     v.Status,
		AssignedTo: v.AssignedTo,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	resp.AssignedUser = FromParty(v.AssignedUser)
	return resp
}
