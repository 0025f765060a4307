// Package events announces committed intake and metric writes. Each event
// is published to the message broker and, for intake changes, mirrored into
// the search index. Delivery is best effort: failures are logged and never
// reach the HTTP caller.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jrm-intake-api/internal/logx"
	"jrm-intake-api/internal/mqx"
)

var eventsLogger = logx.GetScope("events")

// Event types.
const (
	IntakeCreated           = "intake.created"
	IntakeUpdated           = "intake.updated"
	IntakeStatusChanged     = "intake.status_changed"
	IntakeAttachmentChanged = "intake.attachment_changed"
	IntakeDeleted           = "intake.deleted"
	MetricCreated           = "metric.created"
	MetricUpdated           = "metric.updated"
	MetricDeleted           = "metric.deleted"
)

// Event is the message body published for every write.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	IntakeID string    `json:"intake_id"`
	At       time.Time `json:"at"`
	Data     any       `json:"data,omitempty"`
}

// Indexer mirrors intakes into a search index.
type Indexer interface {
	Sync(ctx context.Context, intakeID string) error
	Remove(ctx context.Context, intakeID string) error
}

// Notifier fans events out to an optional publisher and indexer on a
// background worker. A nil *Notifier drops everything.
type Notifier struct {
	pub     mqx.Publisher
	idx     Indexer
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	queue   chan job
	pending sync.WaitGroup
}

type job struct {
	typ      string
	intakeID string
	eventID  string
	body     []byte
}

const queueSize = 256

func NewNotifier(pub mqx.Publisher, idx Indexer) *Notifier {
	n := &Notifier{pub: pub, idx: idx, timeout: 3 * time.Second, now: time.Now}
	if pub != nil || idx != nil {
		n.queue = make(chan job, queueSize)
		go n.run()
	}
	return n
}

// Emit queues typ for intakeID and returns without waiting for delivery.
// The event body is encoded before Emit returns, so data may reference
// request-scoped values. When the queue is full the event is dropped.
func (n *Notifier) Emit(typ, intakeID string, data any) {
	if n == nil || n.queue == nil {
		return
	}
	j := job{typ: typ, intakeID: strings.Clone(intakeID), eventID: uuid.NewString()}
	log := eventsLogger.With(zap.String("event", typ), zap.String("intake_id", j.intakeID), zap.String("event_id", j.eventID))

	if n.pub != nil {
		ev := Event{ID: j.eventID, Type: typ, IntakeID: j.intakeID, At: n.now().UTC(), Data: data}
		body, err := json.Marshal(ev)
		if err != nil {
			log.Warn("encode event failed", zap.Error(err))
		}
		j.body = body
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		log.Warn("notifier closed, event dropped")
		return
	}
	n.pending.Add(1)
	select {
	case n.queue <- j:
	default:
		n.pending.Done()
		log.Warn("event queue full, event dropped")
	}
}

// Wait blocks until every queued event has been delivered.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.pending.Wait()
}

// Close stops accepting events and waits for the queue to drain.
func (n *Notifier) Close() {
	if n == nil || n.queue == nil {
		return
	}
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	n.pending.Wait()
}

func (n *Notifier) run() {
	for j := range n.queue {
		n.deliver(j)
		n.pending.Done()
	}
}

func (n *Notifier) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	log := eventsLogger.With(zap.String("event", j.typ), zap.String("intake_id", j.intakeID), zap.String("event_id", j.eventID))

	if n.pub != nil && j.body != nil {
		if err := n.pub.Publish(ctx, j.typ, j.body); err != nil {
			log.Warn("publish event failed", zap.Error(err))
		}
	}

	if n.idx == nil {
		return
	}
	var err error
	switch {
	case j.typ == IntakeDeleted:
		err = n.idx.Remove(ctx, j.intakeID)
	case strings.HasPrefix(j.typ, "intake."), j.typ == MetricCreated, j.typ == MetricUpdated:
		// metric writes may have changed the intake's Approved Date
		err = n.idx.Sync(ctx, j.intakeID)
	}
	if err != nil {
		log.Warn("search index update failed", zap.Error(err))
	}
}
