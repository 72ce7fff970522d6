package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-console/internal/cache"
	"github.com/spec-kit/itsm-console/internal/config"
	"github.com/spec-kit/itsm-console/internal/domain"
	"github.com/spec-kit/itsm-console/internal/events"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

var testSLA = config.SLAConfig{LowHours: 72, MediumHours: 24, HighHours: 8, CriticalHours: 4}

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	profiles   *fakeProfileRepo
	views      *memViewCache
	dispatcher *recordingDispatcher
	now        time.Time
}

func newTicketFixture(t *testing.T, profiles ...domain.Profile) *ticketFixture {
	t.Helper()
	fx := &ticketFixture{
		tickets:    newFakeTicketRepo(),
		comments:   &fakeCommentRepo{},
		profiles:   newFakeProfileRepo(profiles...),
		views:      newMemViewCache(),
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	fx.service = NewTicketService(TicketDependencies{
		TicketRepo:  fx.tickets,
		CommentRepo: fx.comments,
		ProfileRepo: fx.profiles,
		Views:       fx.views,
		Dispatcher:  fx.dispatcher,
		SLA:         testSLA,
		Now:         func() time.Time { return fx.now },
	})
	return fx
}

func profileFor(id string) domain.Profile {
	return domain.Profile{ID: id, Email: id + "@corp.example"}
}

func TestCreateAppliesDefaults(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusNew, ticket.Status)
	require.Equal(t, domain.TicketTypeIncident, ticket.Type)
	require.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.Equal(t, "user-1", ticket.RequesterID)
	require.NotNil(t, ticket.SLADueAt)
	require.Equal(t, fx.now.Add(24*time.Hour), *ticket.SLADueAt)
	require.Nil(t, ticket.ResolvedAt)
	require.Nil(t, ticket.ClosedAt)

	published := fx.dispatcher.published()
	require.Len(t, published, 1)
	require.Equal(t, events.EventTicketCreated, published[0].Type)
}

func TestNowExposesServiceClock(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))

	// views rendered from service results must read the same clock the
	// lifecycle logic used, not the wall clock
	require.Equal(t, fx.now, fx.service.Now())
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)

	_, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	all, listErr := fx.tickets.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, all, "a rejected create must not write anything")
	require.Empty(t, fx.dispatcher.published())
}

func TestCreateCriticalGetsShortTarget(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{
		Title:    "datacenter outage",
		Priority: domain.TicketPriorityCritical,
	})
	require.NoError(t, err)
	require.Equal(t, fx.now.Add(4*time.Hour), *ticket.SLADueAt)
}

func TestUpdateStatusStaffOnly(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)
	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	_, err = fx.service.UpdateStatus(context.Background(), requester, ticket.ID, domain.TicketStatusResolved)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))

	agent := staffActor("agent-1", domain.RoleAgent)
	_, err = fx.service.UpdateStatus(context.Background(), agent, ticket.ID, domain.TicketStatusResolved)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied), "agents alone are not IT staff")

	manager := staffActor("mgr-1", domain.RoleManager)
	updated, err := fx.service.UpdateStatus(context.Background(), manager, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

func TestResolvedAtLatches(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	resolved, err := fx.service.UpdateStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolved := *resolved.ResolvedAt

	// reopen and resolve again later: the first timestamp survives
	fx.now = fx.now.Add(2 * time.Hour)
	reopened, err := fx.service.UpdateStatus(context.Background(), manager, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt)
	require.Equal(t, firstResolved, *reopened.ResolvedAt)

	fx.now = fx.now.Add(time.Hour)
	resolvedAgain, err := fx.service.UpdateStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.Equal(t, firstResolved, *resolvedAgain.ResolvedAt)
}

func TestCloseSetsBothTimestamps(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)
	admin := staffActor("admin-1", domain.RoleAdmin)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	closed, err := fx.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt, "closing an unresolved ticket backfills resolved_at")
	require.NotNil(t, closed.ClosedAt)
	require.Equal(t, fx.now, *closed.ClosedAt)
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	fx := newTicketFixture(t)
	manager := staffActor("mgr-1", domain.RoleManager)

	_, err := fx.service.UpdateStatus(context.Background(), manager, "missing", domain.TicketStatusOpen)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAssignValidatesAssignee(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("agent-1"))
	requester := staffActor("user-1", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	ghost := "nobody"
	_, err = fx.service.Assign(context.Background(), manager, ticket.ID, &ghost)
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	agentID := "agent-1"
	assigned, err := fx.service.Assign(context.Background(), manager, ticket.ID, &agentID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	require.Equal(t, agentID, *assigned.AssigneeID)

	cleared, err := fx.service.Assign(context.Background(), manager, ticket.ID, nil)
	require.NoError(t, err)
	require.Nil(t, cleared.AssigneeID)
}

func TestInternalCommentRestrictedToStaff(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("mgr-1"))
	requester := staffActor("user-1", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	_, err = fx.service.AddComment(context.Background(), requester, ticket.ID, "any update?", true)
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	comment, err := fx.service.AddComment(context.Background(), manager, ticket.ID, "checking the gateway", true)
	require.NoError(t, err)
	require.True(t, comment.IsInternal)
}

func TestCommentVisibilityFilter(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("mgr-1"))
	requester := staffActor("user-1", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	_, err = fx.service.AddComment(context.Background(), requester, ticket.ID, "still broken", false)
	require.NoError(t, err)
	_, err = fx.service.AddComment(context.Background(), manager, ticket.ID, "escalating to network team", true)
	require.NoError(t, err)
	_, err = fx.service.AddComment(context.Background(), manager, ticket.ID, "fix rolling out", false)
	require.NoError(t, err)

	asRequester, err := fx.service.ListComments(context.Background(), requester, ticket.ID)
	require.NoError(t, err)
	require.Len(t, asRequester, 2)
	for _, view := range asRequester {
		require.False(t, view.IsInternal)
	}

	asStaff, err := fx.service.ListComments(context.Background(), manager, ticket.ID)
	require.NoError(t, err)
	require.Len(t, asStaff, 3)
}

func TestCommentsRequireOwnership(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("user-2"))
	owner := staffActor("user-1", domain.RoleUser)
	stranger := staffActor("user-2", domain.RoleUser)

	ticket, err := fx.service.Create(context.Background(), owner, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	_, err = fx.service.AddComment(context.Background(), stranger, ticket.ID, "me too", false)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))

	_, err = fx.service.ListComments(context.Background(), stranger, ticket.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))
}

func TestListScopesFrontOfficeToOwn(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("user-2"))
	first := staffActor("user-1", domain.RoleUser)
	second := staffActor("user-2", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	_, err := fx.service.Create(context.Background(), first, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)
	_, err = fx.service.Create(context.Background(), second, TicketCreateInput{Title: "laptop battery"})
	require.NoError(t, err)

	mine, err := fx.service.List(context.Background(), first, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "user-1", mine[0].RequesterID)

	all, err := fx.service.List(context.Background(), manager, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := fx.service.List(context.Background(), manager, TicketListFilter{OnlyMine: true})
	require.NoError(t, err)
	require.Empty(t, own)
}

func TestGetDeniesForeignTicketToFrontOffice(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"), profileFor("user-2"))
	owner := staffActor("user-1", domain.RoleUser)
	stranger := staffActor("user-2", domain.RoleUser)

	ticket, err := fx.service.Create(context.Background(), owner, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	_, err = fx.service.Get(context.Background(), stranger, ticket.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))
}

func TestStatsBreachFlipsOnSettle(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)
	manager := staffActor("mgr-1", domain.RoleManager)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{
		Title:    "mail bounce",
		Priority: domain.TicketPriorityCritical,
	})
	require.NoError(t, err)

	// walk past the 4h critical target
	fx.now = fx.now.Add(6 * time.Hour)

	stats, err := fx.service.Stats(context.Background(), manager)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 1, stats.OpenTickets)
	require.Equal(t, 1, stats.Breached)

	_, err = fx.service.UpdateStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	stats, err = fx.service.Stats(context.Background(), manager)
	require.NoError(t, err)
	require.Equal(t, 0, stats.OpenTickets)
	require.Equal(t, 0, stats.Breached, "a settled ticket never counts as breached")
}

func TestStatsStaffOnly(t *testing.T) {
	fx := newTicketFixture(t)
	requester := staffActor("user-1", domain.RoleUser)

	_, err := fx.service.Stats(context.Background(), requester)
	require.True(t, apperrors.IsCode(err, apperrors.CodePermissionDenied))
}

func TestMutationsInvalidateCachedViews(t *testing.T) {
	fx := newTicketFixture(t, profileFor("user-1"))
	requester := staffActor("user-1", domain.RoleUser)

	ticket, err := fx.service.Create(context.Background(), requester, TicketCreateInput{Title: "VPN down"})
	require.NoError(t, err)

	require.Contains(t, fx.views.invalidated, cache.KeyTicketList)
	require.Contains(t, fx.views.invalidated, cache.KeyTicketStats)
	require.Contains(t, fx.views.invalidated, cache.KeyTicket(ticket.ID))
}
