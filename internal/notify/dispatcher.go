// internal/notify/dispatcher.go
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"careers-backend/internal/candidatures/lifecycle"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/common/metrics"
)

// Options tunes the async dispatcher.
type Options struct {
	// Company appears in the email signature and body.
	Company string
	// QueueSize bounds the in-flight event buffer. When the buffer is full
	// the event is dropped rather than blocking the transition request.
	QueueSize int
	// SendTimeout bounds each outbound delivery.
	SendTimeout time.Duration
	// SMS, when non-nil, enables the SMS leg alongside email.
	SMS SMSSender
}

func (o Options) withDefaults() Options {
	if o.Company == "" {
		o.Company = "C4E Africa"
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 10 * time.Second
	}
	return o
}

// AsyncDispatcher delivers outcome notifications off the request path. A
// single worker drains a bounded queue; delivery failures are logged and
// counted, never surfaced to the caller, because the status transition has
// already committed.
type AsyncDispatcher struct {
	mail    MailTransport
	sms     SMSSender
	company string
	timeout time.Duration
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan lifecycle.Event
	done   chan struct{}
}

func NewAsyncDispatcher(mail MailTransport, opts Options, log logger.Logger) *AsyncDispatcher {
	opts = opts.withDefaults()
	d := &AsyncDispatcher{
		mail:    mail,
		sms:     opts.SMS,
		company: opts.Company,
		timeout: opts.SendTimeout,
		logger:  log,
		queue:   make(chan lifecycle.Event, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues an event without blocking. Full queue means the event is
// dropped and counted; losing a courtesy email is preferable to stalling an
// admin decision. Events arriving after Close are dropped the same way.
func (d *AsyncDispatcher) Dispatch(event lifecycle.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.closed {
		select {
		case d.queue <- event:
			return
		default:
		}
	}
	metrics.NotificationsDropped.Inc()
	d.logger.Warn("notification queue full or closed, dropping event", map[string]interface{}{
		"source": string(event.Source),
		"id":     event.ID,
		"status": string(event.Status),
	})
}

// Close stops accepting events and waits for the queue to drain, up to the
// context deadline.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *AsyncDispatcher) deliver(event lifecycle.Event) {
	notificationID := uuid.New().String()
	log := d.logger.WithFields(map[string]interface{}{
		"notification_id": notificationID,
		"source":          string(event.Source),
		"id":              event.ID,
		"status":          string(event.Status),
	})

	if event.Email == "" {
		log.Warn("no candidate email on file, skipping notification", nil)
		return
	}

	subject, body, err := renderOutcome(event.Status, event.Name, event.Role, d.company)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		log.WithError(err).Error("notification rendering failed", nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.mail.Deliver(ctx, event.Email, subject, body); err != nil {
		metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		log.WithError(err).Error("outcome email delivery failed", nil)
	} else {
		metrics.NotificationsSent.WithLabelValues("email", "ok").Inc()
		log.Info("outcome email delivered", map[string]interface{}{"to": event.Email})
	}

	if d.sms == nil || event.Phone == "" {
		return
	}
	if err := d.sms.Send(ctx, event.Phone, smsOutcome(event.Status, event.Name, event.Role, d.company)); err != nil {
		metrics.NotificationsSent.WithLabelValues("sms", "error").Inc()
		log.WithError(err).Error("outcome sms delivery failed", nil)
	} else {
		metrics.NotificationsSent.WithLabelValues("sms", "ok").Inc()
	}
}
