package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/api/dto"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/service"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// PortalTicketsHandler serves the self-service surface. It narrows every
// read to the caller's own requests and never exposes internal comments,
// regardless of the caller's roles: IT staff browsing here see exactly
// what an end user sees.
type PortalTicketsHandler struct {
	service *service.TicketService
}

// NewPortalTicketsHandler constructs handler.
func NewPortalTicketsHandler(ticketService *service.TicketService) *PortalTicketsHandler {
	return &PortalTicketsHandler{service: ticketService}
}

// Create POST /portal/tickets.
func (h *PortalTicketsHandler) Create(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.Create(c.Context(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.TicketType(req.Type),
		Priority:    domain.TicketPriority(req.Priority),
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket, h.service.Now())})
}

// List GET /portal/tickets.
func (h *PortalTicketsHandler) List(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	filter.OnlyMine = true
	tickets, err := h.service.List(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicketView(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /portal/tickets/:id.
func (h *PortalTicketsHandler) Get(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	if view.RequesterID != actor.ID {
		return apperrors.NewPermissionDenied("not your ticket")
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketView(view)})
}

// AddComment POST /portal/tickets/:id/comments. Always public.
func (h *PortalTicketsHandler) AddComment(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.Context(), actor, c.Params("id"), req.Content, false)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromCommentView(&service.CommentView{Comment: *comment})})
}

// ListComments GET /portal/tickets/:id/comments. Internal entries are
// dropped here even for staff callers.
func (h *PortalTicketsHandler) ListComments(c *fiber.Ctx) error {
	_, actor, err := requireSession(c)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		if comments[i].IsInternal {
			continue
		}
		items = append(items, dto.FromCommentView(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
