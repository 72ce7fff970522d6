package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTicketEnumsAreClosed(t *testing.T) {
	for typ := range TicketTypeLabels {
		require.True(t, typ.Valid())
	}
	for status := range TicketStatusLabels {
		require.True(t, status.Valid())
	}
	for priority := range TicketPriorityLabels {
		require.True(t, priority.Valid())
	}

	require.False(t, TicketStatus("archived").Valid())
	require.False(t, TicketType("outage").Valid())
	require.False(t, TicketPriority("urgent").Valid())
}

func TestSettled(t *testing.T) {
	require.True(t, TicketStatusResolved.Settled())
	require.True(t, TicketStatusClosed.Settled())
	for _, status := range OpenStatuses {
		require.False(t, status.Settled())
	}
}

func TestBreached(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name     string
		due      *time.Time
		status   TicketStatus
		breached bool
	}{
		{"no due date never breaches", nil, TicketStatusOpen, false},
		{"future due date", &future, TicketStatusOpen, false},
		{"past due and open", &past, TicketStatusOpen, true},
		{"past due and in progress", &past, TicketStatusInProgress, true},
		{"past due but resolved", &past, TicketStatusResolved, false},
		{"past due but closed", &past, TicketStatusClosed, false},
		{"due exactly now", &now, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := Ticket{Status: tc.status, SLADueAt: tc.due}
			require.Equal(t, tc.breached, ticket.Breached(now))
		})
	}
}

func TestParseTicketStatus(t *testing.T) {
	status, err := ParseTicketStatus("in_progress")
	require.NoError(t, err)
	require.Equal(t, TicketStatusInProgress, status)

	_, err = ParseTicketStatus("In Progress")
	require.Error(t, err, "labels are not wire values")
}
