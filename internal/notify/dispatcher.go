package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// RecordStore persists delivery attempts. Implemented by
// repository.NotificationRepository.
type RecordStore interface {
	Create(ctx context.Context, record *domain.NotificationRecord) error
	UpdateOutcome(ctx context.Context, id string, status domain.DeliveryStatus, errText string, sentAt *time.Time) error
}

// Dispatcher renders and delivers notifications across all enabled channels.
// Delivery is best-effort and fire-and-forget: the triggering operation has
// already returned by the time attempts run, and no failure propagates.
type Dispatcher struct {
	channels  []Channel
	templates TemplateSet
	records   RecordStore
	logger    *zap.Logger
	baseURL   string
	timeout   time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

// NewDispatcher builds the dispatcher.
func NewDispatcher(channels []Channel, templates TemplateSet, records RecordStore, logger *zap.Logger, baseURL string, attemptTimeout time.Duration) *Dispatcher {
	if attemptTimeout <= 0 {
		attemptTimeout = 10 * time.Second
	}
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Dispatcher{
		channels:  channels,
		templates: templates,
		records:   records,
		logger:    logger,
		baseURL:   baseURL,
		timeout:   attemptTimeout,
		now:       time.Now,
	}
}

// Notify fans the event out to every (recipient, channel) pair. Each channel
// renders its own template variant, each attempt runs on its own goroutine
// with its own timeout, and the outcome is never awaited by the caller.
func (d *Dispatcher) Notify(ctx context.Context, event events.Event, recipients Recipients) {
	vars := VariablesFor(event, d.baseURL, d.now())

	base := context.WithoutCancel(ctx)
	for _, channel := range d.channels {
		if !channel.Enabled() {
			continue
		}
		tmpl, ok := d.templates.Resolve(string(event.Type), channel.Kind())
		if !ok {
			d.logger.Warn("no template for event kind",
				zap.String("event_kind", string(event.Type)),
				zap.String("channel", string(channel.Kind())),
			)
			continue
		}
		subject := Render(tmpl.Subject, vars)
		body := Render(tmpl.Body, vars)

		for _, target := range channel.Targets(recipients) {
			if target == "" {
				continue
			}
			d.wg.Add(1)
			go d.attempt(base, channel, event, target, subject, body)
		}
	}
}

// Wait blocks until in-flight attempts finish. Used by shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) attempt(ctx context.Context, channel Channel, event events.Event, target, subject, body string) {
	defer d.wg.Done()

	record := &domain.NotificationRecord{
		TicketID:  event.Ticket.TicketID,
		EventKind: string(event.Type),
		Channel:   channel.Kind(),
		Recipient: target,
		Subject:   subject,
		Body:      body,
		Status:    domain.DeliveryPending,
	}
	if err := d.records.Create(ctx, record); err != nil {
		d.logger.Error("notification record write failed",
			zap.String("channel", string(channel.Kind())),
			zap.Error(err),
		)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := channel.Send(attemptCtx, target, subject, body); err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("channel", string(channel.Kind())),
			zap.String("ticket_id", event.Ticket.TicketID),
			zap.Error(err),
		)
		if updErr := d.records.UpdateOutcome(ctx, record.ID, domain.DeliveryFailed, err.Error(), nil); updErr != nil {
			d.logger.Error("notification record update failed", zap.Error(updErr))
		}
		return
	}

	sentAt := d.now()
	if err := d.records.UpdateOutcome(ctx, record.ID, domain.DeliverySent, "", &sentAt); err != nil {
		d.logger.Error("notification record update failed", zap.Error(err))
	}
}
