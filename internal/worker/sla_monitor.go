package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-console/internal/events"
	"github.com/spec-kit/itsm-console/internal/repository"
)

// SLAMonitor periodically scans for tickets past their due time and
// dispatches breach events. The scan only reads; breach remains a derived
// property and is never written back to the store.
type SLAMonitor struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	spec       string
	cron       *cron.Cron
}

// NewSLAMonitor builds the monitor with a cron spec such as "*/15 * * * *".
func NewSLAMonitor(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger, spec string) *SLAMonitor {
	return &SLAMonitor{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		spec:       spec,
	}
}

// Start schedules the scan. Returns the scheduling error, if any.
func (m *SLAMonitor) Start(ctx context.Context) error {
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.spec, func() { m.scan(ctx) }); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("sla monitor started", zap.String("spec", m.spec))
	return nil
}

// Stop halts the schedule and waits for a running scan to finish.
func (m *SLAMonitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

func (m *SLAMonitor) scan(ctx context.Context) {
	now := time.Now()
	breached, err := m.tickets.ListBreached(ctx, now)
	if err != nil {
		m.logger.Error("sla scan failed", zap.Error(err))
		return
	}
	for i := range breached {
		ticket := &breached[i]
		if m.dispatcher == nil || ticket.SLADueAt == nil {
			continue
		}
		_ = m.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketSLABreached,
			TicketID:  ticket.ID,
			Timestamp: now,
			Payload: events.TicketSLABreachedPayload{
				Number:   ticket.Number,
				Priority: ticket.Priority,
				DueAt:    *ticket.SLADueAt,
			},
		})
	}
	if len(breached) > 0 {
		m.logger.Info("sla scan complete", zap.Int("breached", len(breached)))
	}
}
