package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-console/internal/domain"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

func newAssetFixture(assets []domain.Asset, profiles ...domain.Profile) (*AssetService, *fakeAssetRepo) {
	repo := newFakeAssetRepo(assets...)
	svc := NewAssetService(AssetDependencies{
		AssetRepo:   repo,
		ProfileRepo: newFakeProfileRepo(profiles...),
		Views:       newMemViewCache(),
		Dispatcher:  &recordingDispatcher{},
	})
	return svc, repo
}

func TestAssetAssignStaffOnly(t *testing.T) {
	svc, _ := newAssetFixture([]domain.Asset{{ID: "asset-1", Tag: "LP-001"}}, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)

	userID := "user-1"
	_, err := svc.Assign(context.Background(), requester, "asset-1", &userID)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))
}

func TestAssetAssignValidatesUser(t *testing.T) {
	svc, _ := newAssetFixture([]domain.Asset{{ID: "asset-1", Tag: "LP-001"}}, profileFor("user-1"))
	manager := staffActor("mgr-1", domain.RoleManager)

	ghost := "ghost"
	_, err := svc.Assign(context.Background(), manager, "asset-1", &ghost)
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	userID := "user-1"
	asset, err := svc.Assign(context.Background(), manager, "asset-1", &userID)
	require.NoError(t, err)
	require.NotNil(t, asset.AssignedTo)
	require.Equal(t, userID, *asset.AssignedTo)

	cleared, err := svc.Assign(context.Background(), manager, "asset-1", nil)
	require.NoError(t, err)
	require.Nil(t, cleared.AssignedTo)
}

func TestAssetAssignUnknownAsset(t *testing.T) {
	svc, _ := newAssetFixture(nil, profileFor("user-1"))
	manager := staffActor("mgr-1", domain.RoleManager)

	userID := "user-1"
	_, err := svc.Assign(context.Background(), manager, "missing", &userID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAssetListResolvesAssignee(t *testing.T) {
	userID := "user-1"
	svc, _ := newAssetFixture([]domain.Asset{
		{ID: "asset-1", Tag: "LP-001", AssignedTo: &userID},
		{ID: "asset-2", Tag: "LP-002"},
	}, profileFor("user-1"))
	manager := staffActor("mgr-1", domain.RoleManager)

	views, err := svc.List(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, view := range views {
		if view.AssignedTo == nil {
			require.Nil(t, view.AssignedUser)
			continue
		}
		require.NotNil(t, view.AssignedUser)
		require.Equal(t, "user-1@corp.example", view.AssignedUser.Email)
	}
}
