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

// AssetService assigns inventory assets to users. It shares the
// validate-mutate-invalidate shape of ticket assignment without a state
// machine of its own.
type AssetService struct {
	assets     repository.AssetRepository
	profiles   repository.ProfileRepository
	views      cache.ViewCache
	dispatcher events.Dispatcher
}

// AssetDependencies bundles collaborators for the asset service.
type AssetDependencies struct {
	AssetRepo   repository.AssetRepository
	ProfileRepo repository.ProfileRepository
	Views       cache.ViewCache
	Dispatcher  events.Dispatcher
}

// NewAssetService constructs the service.
func NewAssetService(deps AssetDependencies) *AssetService {
	return &AssetService{
		assets:     deps.AssetRepo,
		profiles:   deps.ProfileRepo,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
	}
}

// AssetView is an asset with resolved assignee identity.
type AssetView struct {
	domain.Asset
	AssignedUser *PartySummary `json:"assigned_user"`
}

// Assign sets or clears the asset's user. IT staff only; a non-nil user
// must exist.
func (s *AssetService) Assign(ctx context.Context, actor Actor, assetID string, userID *string) (*domain.Asset, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}
	if userID != nil {
		if _, err := s.profiles.GetByID(ctx, *userID); err != nil {
			if apperrors.IsCode(apperrors.MapError(err), apperrors.CodeNotFound) {
				return nil, apperrors.NewValidationError("assignee does not exist", map[string]any{"user_id": *userID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.assets.UpdateAssignment(ctx, asset.ID, userID); err != nil {
		return nil, apperrors.MapError(err)
	}
	asset.AssignedTo = userID

	if s.views != nil {
		_ = s.views.Invalidate(ctx, cache.KeyAssetList)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAssetAssigned,
			ActorID:   actor.ID,
			Timestamp: time.Now(),
			Payload:   events.AssetAssignedPayload{AssetID: asset.ID, AssignedTo: userID},
		})
	}
	return asset, nil
}

// List returns assets with embedded assignee profiles. IT staff only.
func (s *AssetService) List(ctx context.Context, actor Actor) ([]AssetView, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}

	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ids := make([]string, 0, len(assets))
	seen := map[string]struct{}{}
	for i := range assets {
		if assets[i].AssignedTo == nil {
			continue
		}
		id := *assets[i].AssignedTo
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var profilesByID map[string]*PartySummary
	if len(ids) > 0 {
		profiles, err := s.profiles.ListByIDs(ctx, ids)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		profilesByID = make(map[string]*PartySummary, len(profiles))
		for i := range profiles {
			p := &profiles[i]
			profilesByID[p.ID] = &PartySummary{ID: p.ID, Email: p.Email, FullName: p.FullName, AvatarURL: p.AvatarURL}
		}
	}

	views := make([]AssetView, 0, len(assets))
	for i := range assets {
		view := AssetView{Asset: assets[i]}
		if assets[i].AssignedTo != nil {
			view.AssignedUser = profilesByID[*assets[i].AssignedTo]
		}
		views = append(views, view)
	}
	return views, nil
}
