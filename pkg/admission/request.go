// Package admission implements a bounded-concurrency, priority-ordered
// dispatcher. It accepts opaque work items keyed by an identity, bounds how
// many execute at once, and dispatches strictly by priority then enqueue
// order. It knows nothing about files or chunks.
package admission

import "time"

// Priority orders queued work. Higher priorities dispatch first; within a
// priority, older submissions win.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ExecuteFunc performs a work item's actual I/O. A panic inside it is
// caught and reported as a failure.
type ExecuteFunc func() error

// CompleteFunc receives a work item's outcome. It is invoked exactly once
// per accepted Submit, including for failures and cleared items.
type CompleteFunc func(Result)

// Result describes the outcome of one work item.
type Result struct {
	// Identity is the key the item was submitted under.
	Identity string

	// OK reports whether the executor ran without error.
	OK bool

	// Err is the executor's error (or ErrCleared), nil when OK.
	Err error

	// Meta is the caller-supplied metadata passed to Submit.
	Meta any

	// Wait is the time the item spent queued before dispatch.
	Wait time.Duration

	// Runtime is the executor's wall time. Zero for cleared items.
	Runtime time.Duration
}

// item is a queued work request.
type item struct {
	identity   string
	priority   Priority
	enqueuedAt time.Time
	seq        uint64 // breaks enqueuedAt ties so ordering is strictly total
	meta       any
	execute    ExecuteFunc
	onComplete CompleteFunc
}

// complete invokes the completion callback if one was supplied.
func (it *item) complete(res Result) {
	if it.onComplete != nil {
		it.onComplete(res)
	}
}
