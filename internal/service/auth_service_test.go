package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-console/internal/config"
	"github.com/spec-kit/itsm-console/internal/domain"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

func newAuthFixture(profiles ...domain.Profile) (*AuthService, *fakeProfileRepo) {
	repo := newFakeProfileRepo(profiles...)
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}}
	svc := NewAuthService(cfg, AuthDependencies{ProfileRepo: repo, Views: newMemViewCache()})
	return svc, repo
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	profile, token, _, err := svc.Register(context.Background(), "  Alice@Corp.Example ", "hunter2secret", nil)
	require.NoError(t, err)
	require.Equal(t, "alice@corp.example", profile.Email)
	require.NotEmpty(t, token)
	require.NotEqual(t, "hunter2secret", profile.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), "alice@corp.example", "hunter2secret", nil)
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "ALICE@corp.example", "otherpassword", nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), "alice@corp.example", "hunter2secret", nil)
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "alice@corp.example", "wrong")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthenticated))

	_, _, _, err = svc.Login(context.Background(), "nobody@corp.example", "hunter2secret")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthenticated))

	profile, token, _, err := svc.Login(context.Background(), "alice@corp.example", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, "alice@corp.example", profile.Email)
	require.NotEmpty(t, token)
}

func TestUpdateProfileOwnerOrAdmin(t *testing.T) {
	svc, _ := newAuthFixture(profileFor("user-1"), profileFor("user-2"))
	owner := staffActor("user-1", domain.RoleUser)
	stranger := staffActor("user-2", domain.RoleUser)
	admin := staffActor("admin-1", domain.RoleAdmin)

	name := "Alice Smith"
	_, err := svc.UpdateProfile(context.Background(), stranger, "user-1", ProfileUpdateInput{FullName: &name})
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))

	updated, err := svc.UpdateProfile(context.Background(), owner, "user-1", ProfileUpdateInput{FullName: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	require.Equal(t, name, *updated.FullName)

	dept := "Finance"
	updated, err = svc.UpdateProfile(context.Background(), admin, "user-1", ProfileUpdateInput{Department: &dept})
	require.NoError(t, err)
	require.Equal(t, name, *updated.FullName, "untouched fields survive partial updates")
	require.Equal(t, dept, *updated.Department)
}
