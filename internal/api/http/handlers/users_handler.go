package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/api/dto"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/service"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// UsersHandler manages the admin user directory and role grants.
type UsersHandler struct {
	roles *service.RoleService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(roleService *service.RoleService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{roles: roleService, auth: authService}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	users, err := h.roles.ListUsersWithRoles(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserWithRolesResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.FromUserWithRoles(u))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddRole POST /users/:id/roles.
func (h *UsersHandler) AddRole(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.AddRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	grant, err := h.roles.AddGrant(c.Context(), actor, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"user_id": grant.UserID,
		"role":    grant.Role,
	}})
}

// RemoveRole DELETE /users/:id/roles/:role.
func (h *UsersHandler) RemoveRole(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	role, err := domain.ParseRole(c.Params("role"))
	if err != nil {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": c.Params("role")})
	}
	if err := h.roles.RemoveGrant(c.Context(), actor, c.Params("id"), role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "revoked"}})
}

// UpdateProfile PATCH /users/:id/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.auth.UpdateProfile(c.Context(), actor, c.Params("id"), service.ProfileUpdateInput{
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
