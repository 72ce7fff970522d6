package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/api/dto"
	"github.com/spec-kit/itsm-console/internal/service"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// AssetsHandler manages the asset inventory endpoints.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	assets, err := h.service.List(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for _, a := range assets {
		items = append(items, dto.FromAssetView(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign PATCH /assets/:id/assignee.
func (h *AssetsHandler) Assign(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.AssignAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.service.Assign(c.Context(), actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAssetView(service.AssetView{Asset: *asset})})
}
