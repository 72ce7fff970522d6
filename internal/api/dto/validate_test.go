package dto

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

func TestValidateCreateTicketRequest(t *testing.T) {
	require.NoError(t, Validate(CreateTicketRequest{Title: "VPN down"}))

	err := Validate(CreateTicketRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	err = Validate(CreateTicketRequest{Title: "x", Priority: "urgent"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed), "priority outside the enum is rejected")
}

func TestValidateStatusEnum(t *testing.T) {
	require.NoError(t, Validate(UpdateStatusRequest{Status: "in_progress"}))

	err := Validate(UpdateStatusRequest{Status: "archived"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestValidateSetModeRequest(t *testing.T) {
	require.NoError(t, Validate(SetModeRequest{Mode: "si"}))
	require.NoError(t, Validate(SetModeRequest{Mode: "user"}))

	err := Validate(SetModeRequest{Mode: "kiosk"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestValidateRegisterRequest(t *testing.T) {
	require.NoError(t, Validate(RegisterRequest{Email: "a@b.example", Password: "longenough"}))

	err := Validate(RegisterRequest{Email: "not-an-email", Password: "longenough"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	err = Validate(RegisterRequest{Email: "a@b.example", Password: "short"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}
