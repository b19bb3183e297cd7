// Package notify delivers member notifications off the request path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"arena/internal/adapters/email"
	"arena/internal/domain/notification"
	"arena/internal/domain/outbox"
)

// Defaults for Options fields left zero.
const (
	DefaultQueueSize = 256
	DefaultBatchSize = 20
)

// OutboxSaver persists emails that failed their first delivery.
type OutboxSaver interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// Options configures a Dispatcher.
type Options struct {
	QueueSize int
	BatchSize int
	NewID     func() string
	Now       func() time.Time
}

// Dispatcher queues notifications and delivers them from a single worker.
// Enqueueing never blocks: a full queue drops the message with a warning.
type Dispatcher struct {
	sender    email.Sender
	outbox    OutboxSaver
	md        goldmark.Markdown
	batchSize int
	newID     func() string
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan notification.Message
	done   chan struct{}
}

// NewDispatcher creates a Dispatcher. A nil outbox discards failed emails.
// PRE: sender is non-nil; opts.NewID is non-nil
// POST: Returns a dispatcher that accepts messages; Start must be called to deliver them
func NewDispatcher(sender email.Sender, ob OutboxSaver, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		sender: sender,
		outbox: ob,
		md: goldmark.New(
			goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
		),
		batchSize: opts.BatchSize,
		newID:     opts.NewID,
		now:       opts.Now,
		queue:     make(chan notification.Message, opts.QueueSize),
		done:      make(chan struct{}),
	}
}

// Notify enqueues msg for delivery and returns immediately.
func (d *Dispatcher) Notify(msg notification.Message) {
	if err := msg.Validate(); err != nil {
		slog.Warn("notification_skipped", "type", msg.Type, "member_id", msg.MemberID, "reason", err.Error())
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("notification_dropped", "type", msg.Type, "member_id", msg.MemberID, "reason", "dispatcher closed")
		return
	}
	select {
	case d.queue <- msg:
	default:
		slog.Warn("notification_dropped", "type", msg.Type, "member_id", msg.MemberID, "reason", "queue full")
	}
}

// Start runs the delivery worker until Close drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for msg := range d.queue {
			batch := []notification.Message{msg}
		fill:
			for len(batch) < d.batchSize {
				select {
				case next, ok := <-d.queue:
					if !ok {
						break fill
					}
					batch = append(batch, next)
				default:
					break fill
				}
			}
			d.deliver(ctx, batch)
		}
	}()
}

// Close stops accepting messages and waits for queued ones to be delivered.
// PRE: Start has been called
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// deliver sends one batch: every message goes to WhatsApp, and messages with
// an email address also go out as one provider batch.
func (d *Dispatcher) deliver(ctx context.Context, batch []notification.Message) {
	var reqs []email.SendRequest
	for _, msg := range batch {
		if msg.Phone != "" {
			// WhatsApp delivery is simulated; the log line is the record.
			slog.Info("whatsapp_sent", "type", msg.Type, "member_id", msg.MemberID, "phone", msg.Phone, "text", msg.Text())
		}
		if msg.Email == "" {
			continue
		}
		req, err := d.emailRequest(msg)
		if err != nil {
			slog.Error("notification_failed", "type", msg.Type, "member_id", msg.MemberID, "error", err.Error())
			continue
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return
	}

	results, err := d.sender.SendBatch(ctx, reqs)
	if err == nil {
		slog.Info("notification_event", "emails", len(reqs))
		return
	}
	slog.Error("notification_failed", "emails", len(reqs), "accepted", len(results), "error", err.Error())
	for _, req := range reqs[min(len(results), len(reqs)):] {
		d.park(ctx, req, err)
	}
}

// emailRequest renders msg as an HTML email.
func (d *Dispatcher) emailRequest(msg notification.Message) (email.SendRequest, error) {
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(msg.Markdown()), &buf); err != nil {
		return email.SendRequest{}, fmt.Errorf("render markdown: %w", err)
	}
	return email.SendRequest{
		To:      []string{msg.Email},
		Subject: msg.Subject(),
		HTML:    buf.String(),
		Text:    msg.Text(),
		Tags:    map[string]string{"type": msg.Type},
	}, nil
}

// park writes a failed email to the outbox for the retry worker.
func (d *Dispatcher) park(ctx context.Context, req email.SendRequest, cause error) {
	if d.outbox == nil {
		return
	}
	payload, err := json.Marshal(req)
	if err != nil {
		slog.Error("outbox_encode_failed", "subject", req.Subject, "error", err.Error())
		return
	}
	entry := outbox.Entry{
		ID:           d.newID(),
		ActionType:   outbox.ActionTypeNotificationEmail,
		Payload:      string(payload),
		Status:       outbox.StatusPending,
		CreatedAt:    d.now(),
		ErrorMessage: cause.Error(),
	}
	if err := entry.Validate(); err != nil {
		slog.Error("outbox_entry_invalid", "error", err.Error())
		return
	}
	if err := d.outbox.Save(ctx, entry); err != nil {
		slog.Error("outbox_save_failed", "entry_id", entry.ID, "error", err.Error())
	}
}
