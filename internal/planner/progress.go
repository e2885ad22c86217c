package planner

import (
	"time"
)

// ProgressStatus is the lifecycle state reported for one stage or tool group.
type ProgressStatus string

const (
	ProgressStarted   ProgressStatus = "started"
	ProgressCompleted ProgressStatus = "completed"
	ProgressFailed    ProgressStatus = "failed"
)

// ProgressEvent reports node-level progress of a planning run so callers can
// stream status to a user while the run is in flight.
type ProgressEvent struct {
	Stage     string         `json:"stage"`
	Name      string         `json:"name,omitempty"`
	Status    ProgressStatus `json:"status"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ProgressEmitter receives progress events. Implementations must be safe for
// concurrent use; the orchestrator emits from multiple workers.
type ProgressEmitter interface {
	Emit(event ProgressEvent)
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit implements ProgressEmitter.
func (NopEmitter) Emit(ProgressEvent) {}

func emit(e ProgressEmitter, stage, name string, status ProgressStatus, duration time.Duration) {
	if e == nil {
		return
	}
	e.Emit(ProgressEvent{
		Stage:     stage,
		Name:      name,
		Status:    status,
		Duration:  duration,
		Timestamp: time.Now(),
	})
}
