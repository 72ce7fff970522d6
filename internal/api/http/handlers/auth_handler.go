package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/api/dto"
	"github.com/spec-kit/itsm-console/internal/service"
	"github.com/spec-kit/itsm-console/internal/session"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// AuthHandler manages registration, sign-in, and the caller's own session,
// including the interface-mode endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	profile, token, expiresAt, err := h.service.Register(c.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   dto.FromProfile(profile),
	}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	profile, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   dto.FromProfile(profile),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if err := h.service.Logout(c.Context(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "signed_out"}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess, _, err := requireSession(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(sess)})
}

// UpdateMyProfile PATCH /auth/me/profile.
func (h *AuthHandler) UpdateMyProfile(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.UpdateProfile(c.Context(), actor, actor.ID, service.ProfileUpdateInput{
		FullName:   req.FullName,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		Phone:      req.Phone,
		AvatarURL:  req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProfile(profile)})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess, _, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.Context(), sess.PrincipalID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "changed"}})
}

// SetMode PUT /session/mode. Non-staff callers get their session back
// unchanged: the switch is silently ignored for them.
func (h *AuthHandler) SetMode(c *fiber.Ctx) error {
	sess, _, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.SetModeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := sess.SetMode(c.Context(), session.ParseMode(req.Mode)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(sess)})
}

// ToggleMode POST /session/mode/toggle.
func (h *AuthHandler) ToggleMode(c *fiber.Ctx) error {
	sess, _, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := sess.ToggleMode(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(sess)})
}

func sessionResponse(sess *session.Session) dto.SessionResponse {
	facts := sess.Facts()
	grants := sess.Grants()
	roles := make([]string, 0, len(grants))
	for _, g := range grants {
		roles = append(roles, string(g.Role))
	}
	return dto.SessionResponse{
		Profile:       dto.FromProfile(sess.Profile),
		Roles:         roles,
		PrimaryRole:   string(facts.PrimaryRole),
		IsAdmin:       facts.IsAdmin,
		IsManager:     facts.IsManager,
		IsAgent:       facts.IsAgent,
		IsITStaff:     facts.IsITStaff,
		IsFrontOffice: facts.IsFrontOffice,
		Mode:          string(sess.Mode()),
		CanSwitchMode: sess.CanSwitchMode(),
	}
}
