package tool

import (
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Descriptor contains tool metadata for discovery and introspection.
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// NewDescriptor creates a Descriptor from a Tool interface.
func NewDescriptor(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Tags:        t.Tags(),
	}
}

// CallStatus is the terminal status of a recorded tool call.
type CallStatus string

const (
	CallCompleted CallStatus = "completed"
	CallFailed    CallStatus = "failed"
)

// Call is an immutable record of one tool invocation attempt. A retry
// produces a new Call with an incremented Attempt, never mutates a prior
// one, so the full sequence forms an audit trail for the session.
type Call struct {
	ID        types.ID       `json:"id"`
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args"`
	Status    CallStatus     `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Failure   string         `json:"failure,omitempty"`
	Attempt   int            `json:"attempt"`
	Latency   time.Duration  `json:"latency"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewCompletedCall records a successful invocation attempt.
func NewCompletedCall(tool string, args, result map[string]any, attempt int, latency time.Duration) Call {
	return Call{
		ID:        types.NewID(),
		Tool:      tool,
		Args:      args,
		Status:    CallCompleted,
		Result:    result,
		Attempt:   attempt,
		Latency:   latency,
		Timestamp: time.Now(),
	}
}

// NewFailedCall records a failed invocation attempt.
func NewFailedCall(tool string, args map[string]any, failure error, attempt int, latency time.Duration) Call {
	return Call{
		ID:        types.NewID(),
		Tool:      tool,
		Args:      args,
		Status:    CallFailed,
		Failure:   failure.Error(),
		Attempt:   attempt,
		Latency:   latency,
		Timestamp: time.Now(),
	}
}

// Succeeded reports whether the call completed successfully.
func (c Call) Succeeded() bool {
	return c.Status == CallCompleted
}

// Usage aggregates call counts and latency per tool for reporting.
type Usage struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	TotalMS int64  `json:"total_ms"`
}

// AggregateUsage summarizes a sequence of calls into per-tool usage rows,
// ordered by first appearance.
func AggregateUsage(calls []Call) []Usage {
	index := make(map[string]int)
	var usage []Usage

	for _, call := range calls {
		i, ok := index[call.Tool]
		if !ok {
			i = len(usage)
			index[call.Tool] = i
			usage = append(usage, Usage{Name: call.Tool})
		}
		usage[i].Count++
		usage[i].TotalMS += call.Latency.Milliseconds()
	}

	return usage
}

// Metrics tracks tool execution statistics for monitoring.
// The registry updates metrics automatically during execution.
type Metrics struct {
	TotalCalls     int64         `json:"total_calls"`
	SuccessCalls   int64         `json:"success_calls"`
	FailedCalls    int64         `json:"failed_calls"`
	TotalDuration  time.Duration `json:"total_duration"`
	AvgDuration    time.Duration `json:"avg_duration"`
	LastExecutedAt *time.Time    `json:"last_executed_at,omitempty"`
}

// RecordSuccess records a successful tool execution with the given duration.
func (m *Metrics) RecordSuccess(duration time.Duration) {
	m.TotalCalls++
	m.SuccessCalls++
	m.TotalDuration += duration
	m.AvgDuration = m.TotalDuration / time.Duration(m.TotalCalls)
	now := time.Now()
	m.LastExecutedAt = &now
}

// RecordFailure records a failed tool execution with the given duration.
func (m *Metrics) RecordFailure(duration time.Duration) {
	m.TotalCalls++
	m.FailedCalls++
	m.TotalDuration += duration
	m.AvgDuration = m.TotalDuration / time.Duration(m.TotalCalls)
	now := time.Now()
	m.LastExecutedAt = &now
}

// SuccessRate returns the success rate between 0.0 and 1.0.
// Returns 0.0 if no calls have been made.
func (m *Metrics) SuccessRate() float64 {
	if m.TotalCalls == 0 {
		return 0.0
	}
	return float64(m.SuccessCalls) / float64(m.TotalCalls)
}
