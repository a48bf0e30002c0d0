package morph

import (
	"context"
	"time"
)

// Action is what the dispatcher did with a command event.
type Action string

const (
	ActionIgnored    Action = "ignored"
	ActionLocked     Action = "locked"
	ActionRestored   Action = "restored"
	ActionConverted  Action = "converted"
	ActionSplit      Action = "split"
	ActionAggregated Action = "aggregated"
	ActionFailed     Action = "failed"
)

// EventRecord describes one handled command event.
type EventRecord struct {
	ID          string
	Path        string
	Destination string
	TargetExt   string
	Destructive bool
	Action      Action
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns how long the event took to handle.
func (r EventRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// EventRecorder receives one record per command event. Implementations must not
// block the event loop on failure; errors are theirs to log.
type EventRecorder interface {
	Record(ctx context.Context, rec EventRecord)
}

// NopRecorder discards records.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, EventRecord) {}

// MultiRecorder fans a record out to several recorders in order.
type MultiRecorder []EventRecorder

func (m MultiRecorder) Record(ctx context.Context, rec EventRecord) {
	for _, r := range m {
		r.Record(ctx, rec)
	}
}
