package events

import (
	"time"

	"github.com/spec-kit/itsm-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventTicketSLABreached     EventType = "ticket_sla_breached"
	EventRoleGranted           EventType = "role_granted"
	EventRoleRevoked           EventType = "role_revoked"
	EventAssetAssigned         EventType = "asset_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number   int64                 `json:"number"`
	Type     domain.TicketType     `json:"type"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	AuthorID   string `json:"author_id"`
	IsInternal bool   `json:"is_internal"`
}

// TicketSLABreachedPayload payload.
type TicketSLABreachedPayload struct {
	Number   int64                 `json:"number"`
	Priority domain.TicketPriority `json:"priority"`
	DueAt    time.Time             `json:"due_at"`
}

// RoleChangedPayload payload for grant/revoke events.
type RoleChangedPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// AssetAssignedPayload payload.
type AssetAssignedPayload struct {
	AssetID    string  `json:"asset_id"`
	AssignedTo *string `json:"assigned_to,omitempty"`
}
