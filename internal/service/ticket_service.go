package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itsm-console/internal/cache"
	"github.com/spec-kit/itsm-console/internal/config"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/events"
	"github.com/spec-kit/itsm-console/internal/repository"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// Actor identifies the principal performing an operation along with its
// derived role facts.
type Actor struct {
	ID    string
	Facts domain.Facts
}

// TicketService owns the ticket lifecycle: status, priority, assignment,
// SLA due dates, and comment visibility.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	profiles   repository.ProfileRepository
	views      cache.ViewCache
	dispatcher events.Dispatcher
	sla        config.SLAConfig
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	ProfileRepo repository.ProfileRepository
	Views       cache.ViewCache
	Dispatcher  events.Dispatcher
	SLA         config.SLAConfig
	Now         func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		profiles:   deps.ProfileRepo,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
		sla:        deps.SLA,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload. Status is absent on
// purpose: new tickets always enter at new.
type TicketCreateInput struct {
	Title       string
	Description string
	Type        domain.TicketType
	Priority    domain.TicketPriority
	Category    string
	Subcategory string
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Types      []domain.TicketType
	SearchTerm *string
	Limit      int
	Offset     int
	// OnlyMine narrows the result to the actor's own requests even when
	// the actor is IT staff, for the self-service surface.
	OnlyMine bool
}

// PartySummary is the profile projection embedded in ticket views.
type PartySummary struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// TicketView is a ticket with resolved requester/assignee identity and the
// derived breach flag.
type TicketView struct {
	domain.Ticket
	Requester *PartySummary `json:"requester"`
	Assignee  *PartySummary `json:"assignee"`
	Breached  bool          `json:"sla_breached"`
}

// CommentView is a comment with resolved author identity.
type CommentView struct {
	domain.Comment
	Author *PartySummary `json:"author"`
}

// TicketStats aggregates counts for the dashboard.
type TicketStats struct {
	Total       int                           `json:"total"`
	ByStatus    map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority  map[domain.TicketPriority]int `json:"by_priority"`
	ByType      map[domain.TicketType]int     `json:"by_type"`
	OpenTickets int                           `json:"open_tickets"`
	Breached    int                           `json:"breached"`
}

// Create opens a new ticket for the acting principal. The requester is
// always the caller and never changes afterwards; status is forced to new
// regardless of any caller input.
func (s *TicketService) Create(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticketType := input.Type
	if ticketType == "" {
		ticketType = domain.TicketTypeIncident
	}
	if !ticketType.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": string(ticketType)})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	due := s.now().Add(s.resolutionTarget(priority))
	ticket := &domain.Ticket{
		Type:        ticketType,
		Status:      domain.TicketStatusNew,
		Priority:    priority,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		RequesterID: actor.ID,
		Category:    strings.TrimSpace(input.Category),
		Subcategory: strings.TrimSpace(input.Subcategory),
		SLADueAt:    &due,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateTicketViews(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Number:   ticket.Number,
			Type:     ticket.Type,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the actor with embedded party profiles.
// Front-office principals only ever see their own tickets.
func (s *TicketService) List(ctx context.Context, actor Actor, filter TicketListFilter) ([]TicketView, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Types:      filter.Types,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.OnlyMine || !actor.Facts.IsITStaff {
		requester := actor.ID
		repoFilter.RequesterID = &requester
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.attachParties(ctx, tickets)
}

// Get fetches one ticket. Front-office callers must be the requester.
func (s *TicketService) Get(ctx context.Context, actor Actor, ticketID string) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.Facts.IsITStaff && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewPermissionDenied("not your ticket")
	}
	views, err := s.attachParties(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateStatus moves a ticket to any of the six states. IT staff only.
// resolved_at and closed_at latch on the first entry into their state and
// survive a later reopen; the history of having been resolved is audit
// data, never erased.
func (s *TicketService) UpdateStatus(ctx context.Context, actor Actor, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(newStatus)})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	now := s.now()
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if newStatus == domain.TicketStatusClosed {
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		if ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateTicketViews(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority. IT staff only.
func (s *TicketService) UpdatePriority(ctx context.Context, actor Actor, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(newPriority)})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateTicketViews(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// Assign sets or clears the assignee. IT staff only; a non-nil assignee
// must exist in the profile store.
func (s *TicketService) Assign(ctx context.Context, actor Actor, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}
	if assigneeID != nil {
		if _, err := s.profiles.GetByID(ctx, *assigneeID); err != nil {
			if apperrors.IsCode(apperrors.MapError(err), apperrors.CodeNotFound) {
				return nil, apperrors.NewValidationError("assignee does not exist", map[string]any{"assignee_id": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateTicketViews(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// AddComment appends a comment to a ticket thread. The requester and IT
// staff may comment; only IT staff may mark a comment internal, and a
// non-staff attempt is rejected outright rather than silently downgraded.
func (s *TicketService) AddComment(ctx context.Context, actor Actor, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if isInternal && !actor.Facts.IsITStaff {
		return nil, apperrors.NewValidationError("internal comments are restricted to IT staff", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.Facts.IsITStaff && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewPermissionDenied("not your ticket")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateTicketViews(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorID:   comment.AuthorID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// ListComments returns a ticket's thread with author identity. Internal
// comments are removed entirely for front-office callers; leaking them to
// a requester is a security defect, so the filter lives here and not in
// the rendering layer.
func (s *TicketService) ListComments(ctx context.Context, actor Actor, ticketID string) ([]CommentView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.Facts.IsITStaff && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewPermissionDenied("not your ticket")
	}

	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.Facts.IsITStaff {
		visible := make([]domain.Comment, 0, len(comments))
		for _, comment := range comments {
			if comment.IsInternal {
				continue
			}
			visible = append(visible, comment)
		}
		comments = visible
	}

	authorIDs := make([]string, 0, len(comments))
	seen := map[string]struct{}{}
	for _, comment := range comments {
		if _, ok := seen[comment.AuthorID]; !ok {
			seen[comment.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, comment.AuthorID)
		}
	}
	profilesByID, err := s.partiesByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, CommentView{Comment: comment, Author: profilesByID[comment.AuthorID]})
	}
	return views, nil
}

// statsTTL bounds staleness of the cached dashboard aggregates; every
// ticket mutation invalidates them anyway.
const statsTTL = 30 * time.Second

// Stats computes dashboard aggregates. IT staff only.
func (s *TicketService) Stats(ctx context.Context, actor Actor) (*TicketStats, error) {
	if !actor.Facts.IsITStaff {
		return nil, apperrors.NewPermissionDenied("IT staff role required")
	}

	if s.views != nil {
		var cached TicketStats
		if hit, err := s.views.Get(ctx, cache.KeyTicketStats, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	stats := &TicketStats{
		Total:      len(tickets),
		ByStatus:   make(map[domain.TicketStatus]int),
		ByPriority: make(map[domain.TicketPriority]int),
		ByType:     make(map[domain.TicketType]int),
	}
	for i := range tickets {
		t := &tickets[i]
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		stats.ByType[t.Type]++
		if !t.Status.Settled() {
			stats.OpenTickets++
		}
		if t.Breached(now) {
			stats.Breached++
		}
	}

	if s.views != nil {
		_ = s.views.Set(ctx, cache.KeyTicketStats, stats, statsTTL)
	}
	return stats, nil
}

// Now exposes the service clock so rendered views derive the breach flag
// from the same time source as the lifecycle logic.
func (s *TicketService) Now() time.Time {
	return s.now()
}

func (s *TicketService) resolutionTarget(priority domain.TicketPriority) time.Duration {
	hours := s.sla.MediumHours
	switch priority {
	case domain.TicketPriorityLow:
		hours = s.sla.LowHours
	case domain.TicketPriorityMedium:
		hours = s.sla.MediumHours
	case domain.TicketPriorityHigh:
		hours = s.sla.HighHours
	case domain.TicketPriorityCritical:
		hours = s.sla.CriticalHours
	}
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func (s *TicketService) attachParties(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	ids := make([]string, 0, len(tickets)*2)
	seen := map[string]struct{}{}
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i := range tickets {
		add(tickets[i].RequesterID)
		if tickets[i].AssigneeID != nil {
			add(*tickets[i].AssigneeID)
		}
	}

	profilesByID, err := s.partiesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		view := TicketView{
			Ticket:    tickets[i],
			Requester: profilesByID[tickets[i].RequesterID],
			Breached:  tickets[i].Breached(now),
		}
		if tickets[i].AssigneeID != nil {
			view.Assignee = profilesByID[*tickets[i].AssigneeID]
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *TicketService) partiesByID(ctx context.Context, ids []string) (map[string]*PartySummary, error) {
	result := make(map[string]*PartySummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	profiles, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range profiles {
		p := &profiles[i]
		result[p.ID] = &PartySummary{
			ID:        p.ID,
			Email:     p.Email,
			FullName:  p.FullName,
			AvatarURL: p.AvatarURL,
		}
	}
	return result, nil
}

// invalidateTicketViews drops every cached view a ticket mutation could
// affect: the list, the single ticket, and the aggregates.
func (s *TicketService) invalidateTicketViews(ctx context.Context, ticketID string) {
	if s.views == nil {
		return
	}
	_ = s.views.Invalidate(ctx, cache.KeyTicketList, cache.KeyTicket(ticketID), cache.KeyTicketStats)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
