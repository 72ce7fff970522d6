package domain

import (
	"fmt"
	"time"
)

// TicketType enumerates the kinds of requests the console tracks.
type TicketType string

const (
	TicketTypeIncident TicketType = "incident"
	TicketTypeRequest  TicketType = "request"
	TicketTypeProblem  TicketType = "problem"
	TicketTypeChange   TicketType = "change"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketTypeLabels maps every type to its display label.
var TicketTypeLabels = map[TicketType]string{
	TicketTypeIncident: "Incident",
	TicketTypeRequest:  "Request",
	TicketTypeProblem:  "Problem",
	TicketTypeChange:   "Change",
}

// TicketStatusLabels maps every status to its display label.
var TicketStatusLabels = map[TicketStatus]string{
	TicketStatusNew:        "New",
	TicketStatusOpen:       "Open",
	TicketStatusInProgress: "In Progress",
	TicketStatusPending:    "Pending",
	TicketStatusResolved:   "Resolved",
	TicketStatusClosed:     "Closed",
}

// TicketPriorityLabels maps every priority to its display label.
var TicketPriorityLabels = map[TicketPriority]string{
	TicketPriorityLow:      "Low",
	TicketPriorityMedium:   "Medium",
	TicketPriorityHigh:     "High",
	TicketPriorityCritical: "Critical",
}

// Valid reports whether the type is a known member of the enum.
func (t TicketType) Valid() bool {
	_, ok := TicketTypeLabels[t]
	return ok
}

// Valid reports whether the status is a known member of the enum.
func (s TicketStatus) Valid() bool {
	_, ok := TicketStatusLabels[s]
	return ok
}

// Settled reports whether the status counts as resolved for SLA purposes.
func (s TicketStatus) Settled() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Valid reports whether the priority is a known member of the enum.
func (p TicketPriority) Valid() bool {
	_, ok := TicketPriorityLabels[p]
	return ok
}

// ParseTicketType validates a raw type value.
func ParseTicketType(raw string) (TicketType, error) {
	t := TicketType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown ticket type %q", raw)
	}
	return t, nil
}

// ParseTicketStatus validates a raw status value.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return s, nil
}

// ParseTicketPriority validates a raw priority value.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	p := TicketPriority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown ticket priority %q", raw)
	}
	return p, nil
}

// OpenStatuses are the states counted as "open" in aggregates.
var OpenStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPending,
}

// Ticket is the aggregate for helpdesk requests.
type Ticket struct {
	ID          string
	Number      int64
	Type        TicketType
	Status      TicketStatus
	Priority    TicketPriority
	Title       string
	Description string
	RequesterID string
	AssigneeID  *string
	Category    string
	Subcategory string
	SLADueAt    *time.Time
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Breached reports whether the ticket has missed its SLA due time.
// Derived on every read, never stored.
func (t *Ticket) Breached(now time.Time) bool {
	if t.SLADueAt == nil {
		return false
	}
	return now.After(*t.SLADueAt) && !t.Status.Settled()
}
