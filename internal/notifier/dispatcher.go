package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"productwatch/internal/models"

	"github.com/rs/zerolog"
)

// Dispatcher fans change events out to the email gateway. Delivery is
// fire-and-forget from the pipeline's point of view: a failed send is logged
// and never fails the run that produced the event.
type Dispatcher struct {
	gateway EmailGateway
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates an event dispatcher over the given gateway.
func NewDispatcher(gateway EmailGateway, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		logger:  logger.With().Str("component", "NotificationDispatcher").Logger(),
	}
}

// DispatchEvents sends one email per unique (URL, event type) pair in this
// batch. Duplicate events within the batch are dropped so a single run never
// notifies the same transition twice. Tasks without a notification address
// are skipped silently.
func (d *Dispatcher) DispatchEvents(ctx context.Context, task *models.MonitoringTask, events []models.ChangeEvent) {
	if len(events) == 0 {
		return
	}
	if task.NotifyEmail == "" {
		d.logger.Debug().Str("task_id", task.ID).Int("events", len(events)).Msg("Task has no notification address, skipping dispatch")
		return
	}

	sent := make(map[string]bool, len(events))
	for _, event := range events {
		key := fmt.Sprintf("%s|%s", event.Candidate.URL, event.Type)
		if sent[key] {
			continue
		}
		sent[key] = true

		subject, htmlBody, textBody := FormatChangeEvent(event, task.Keyword)
		d.wg.Add(1)
		go func(to, subject, htmlBody, textBody string, eventType models.ChangeEventType, url string) {
			defer d.wg.Done()
			if err := d.gateway.Send(ctx, to, subject, htmlBody, textBody); err != nil {
				d.logger.Error().Err(err).
					Str("task_id", task.ID).
					Str("url", url).
					Str("event", string(eventType)).
					Msg("Failed to deliver notification")
			}
		}(task.NotifyEmail, subject, htmlBody, textBody, event.Type, event.Candidate.URL)
	}
}

// SendTest sends the configuration test email synchronously.
func (d *Dispatcher) SendTest(ctx context.Context, to string) error {
	subject, htmlBody, textBody := FormatTestEmail(time.Now())
	return d.gateway.Send(ctx, to, subject, htmlBody, textBody)
}

// Wait blocks until all in-flight deliveries finish. Used during shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
