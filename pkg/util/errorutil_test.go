package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewConflict("already exists", nil)
	mapped := ToDomainError(original)
	require.Equal(t, CodeConflict, mapped.Code)
	require.Equal(t, http.StatusConflict, mapped.HTTPStatus)
}

func TestToDomainErrorMapsMissingRows(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.Equal(t, CodeNotFound, mapped.Code)
	require.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "user_roles_pkey"}
	mapped := ToDomainError(fmt.Errorf("insert: %w", pgErr))
	require.Equal(t, CodeConflict, mapped.Code)
	require.Equal(t, "user_roles_pkey", mapped.Details["constraint"])
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("connection reset"))
	require.Equal(t, CodeRemoteFailure, mapped.Code)
	require.Equal(t, http.StatusBadGateway, mapped.HTTPStatus)
	require.ErrorContains(t, mapped, "connection reset")
}

func TestIsCode(t *testing.T) {
	err := NewPermissionDenied("nope")
	require.True(t, IsCode(err, CodePermissionDenied))
	require.False(t, IsCode(err, CodeNotFound))
	require.False(t, IsCode(errors.New("plain"), CodePermissionDenied))
	require.False(t, IsCode(nil, CodePermissionDenied))

	wrapped := fmt.Errorf("handler: %w", err)
	require.True(t, IsCode(wrapped, CodePermissionDenied))
}

func TestMapErrorNilStaysNil(t *testing.T) {
	require.NoError(t, MapError(nil))
}
