package dto

import (
	"time"

	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/service"
)

// CreateTicketRequest payload. Status is not accepted: new tickets always
// enter at new.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,oneof=incident request problem change"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new open in_progress pending resolved closed"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=low medium high critical"`
}

// AssignTicketRequest payload. A null assignee clears the assignment.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// PartyResponse is the embedded identity projection.
type PartyResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID          string         `json:"id"`
	Number      int64          `json:"number"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Requester   *PartyResponse `json:"requester"`
	Assignee    *PartyResponse `json:"assignee"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory"`
	SLADueAt    *time.Time     `json:"sla_due_at"`
	SLABreached bool           `json:"sla_breached"`
	ResolvedAt  *time.Time     `json:"resolved_at"`
	ClosedAt    *time.Time     `json:"closed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID         string         `json:"id"`
	TicketID   string         `json:"ticket_id"`
	Author     *PartyResponse `json:"author"`
	Content    string         `json:"content"`
	IsInternal bool           `json:"is_internal"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FromParty maps a service projection.
func FromParty(p *service.PartySummary) *PartyResponse {
	if p == nil {
		return nil
	}
	return &PartyResponse{ID: p.ID, Email: p.Email, FullName: p.FullName, AvatarURL: p.AvatarURL}
}

// FromTicket maps a bare ticket without party projections.
func FromTicket(t *domain.Ticket, now time.Time) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Number:      t.Number,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		SLADueAt:    t.SLADueAt,
		SLABreached: t.Breached(now),
		ResolvedAt:  t.ResolvedAt,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTicketView maps a ticket with resolved parties.
func FromTicketView(v *service.TicketView) TicketResponse {
	resp := FromTicket(&v.Ticket, time.Time{})
	resp.SLABreached = v.Breached
	resp.Requester = FromParty(v.Requester)
	resp.Assignee = FromParty(v.Assignee)
	return resp
}

// FromCommentView maps a comment with resolved author.
func FromCommentView(v *service.CommentView) CommentResponse {
	return CommentResponse{
		ID:         v.ID,
		TicketID:   v.TicketID,
		Author:     FromParty(v.Author),
		Content:    v.Content,
		IsInternal: v.IsInternal,
		CreatedAt:  v.CreatedAt,
	}
}
