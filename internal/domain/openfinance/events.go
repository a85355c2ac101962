package openfinance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event types published after a sync step completes.
const (
	EventSyncCompleted    = "sync.completed"
	EventBalancesRecorded = "balances.recorded"
)

// Event is a notification that a sync step finished.
type Event struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"userId"`
	SyncID     string    `json:"syncId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher delivers sync events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Locker serializes runs for the same user across processes. Acquire returns
// a conflict error when another run holds the lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// NoopLocker always grants the lock.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type syncIDKey struct{}

// WithSyncID returns a context carrying a fresh sync id unless ctx has one.
func WithSyncID(ctx context.Context) context.Context {
	if SyncIDFromContext(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, syncIDKey{}, uuid.NewString())
}

// SyncIDFromContext returns the sync id stored in ctx, or "".
func SyncIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(syncIDKey{}).(string)
	return id
}

var syncedRecords metric.Int64Counter

func init() {
	var err error
	syncedRecords, err = otel.Meter("finsync/openfinance").Int64Counter(
		"finsync.sync.records",
		metric.WithDescription("Records written by sync runs"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func recordSynced(ctx context.Context, kind string, n int64) {
	if syncedRecords == nil || n == 0 {
		return
	}
	syncedRecords.Add(ctx, n, metric.WithAttributes(attribute.String("kind", kind)))
}
