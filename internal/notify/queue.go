// Package notify keeps the short-lived status messages shown to the user.
// Each notification removes itself after a fixed delay unless dismissed
// first.
package notify

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/metrics"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// ParseSeverity accepts success, error and info.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeveritySuccess, SeverityError, SeverityInfo:
		return sev, nil
	default:
		return "", fmt.Errorf("notify: unknown severity %q", s)
	}
}

type Notification struct {
	ID        int64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Queue is an ordered list of notifications, oldest first. Every live
// notification has exactly one pending expiry timer.
type Queue struct {
	ttl     time.Duration
	metrics *metrics.Metrics

	mu        sync.Mutex
	items     []Notification
	timers    map[int64]*time.Timer
	nextID    int64
	closed    bool
	listeners []func([]Notification)
}

type Option func(*Queue)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

// WithMetrics reports posted and pending counts to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		ttl:    DefaultTTL,
		timers: make(map[int64]*time.Timer),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends a notification and arms its expiry timer. Identical messages
// are not merged. It returns the new id, or 0 once the queue is closed.
func (q *Queue) Add(message string, sev Severity) int64 {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}

	id := q.nextID
	q.nextID++

	q.items = append(q.items, Notification{
		ID:        id,
		Message:   message,
		Severity:  sev,
		CreatedAt: time.Now(),
	})
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.Remove(id) })

	snapshot, listeners := q.snapshotLocked()
	q.mu.Unlock()

	q.metrics.Notification(string(sev))
	q.publish(snapshot, listeners)
	return id
}

// Remove drops the notification with id and cancels its timer. Unknown ids,
// repeated calls and calls after Close are no-ops.
func (q *Queue) Remove(id int64) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}

	idx := slices.IndexFunc(q.items, func(n Notification) bool { return n.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.items = slices.Delete(q.items, idx, idx+1)

	snapshot, listeners := q.snapshotLocked()
	q.mu.Unlock()

	q.publish(snapshot, listeners)
}

// List returns the notifications in insertion order.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// OnChange registers fn to receive the list after every change. fn runs
// without the queue lock held; under concurrent changes call List for the
// latest state.
func (q *Queue) OnChange(fn func([]Notification)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// Close cancels every pending timer. The list is left as is and no further
// changes are accepted. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.listeners = nil
}

func (q *Queue) snapshotLocked() ([]Notification, []func([]Notification)) {
	return slices.Clone(q.items), slices.Clone(q.listeners)
}

func (q *Queue) publish(snapshot []Notification, listeners []func([]Notification)) {
	q.metrics.SetPending(len(snapshot))
	for _, fn := range listeners {
		fn(snapshot)
	}
}
