package port

import (
	"context"
	"time"
)

// Task is a background job with a stable type identifier and opaque payload
// bytes. Payload encoding is up to callers; the port stays free of
// serialization concerns.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error signals retry per the adapter's
// policy, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Adapters map supported fields to
// the underlying backend best-effort; zero values mean "unspecified".
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	ProcessAt time.Time
	MaxRetry  int  // max retries for the task
	NoRetry   bool // fire-and-forget: never retry, even on handler error
	Timeout   time.Duration
}

// Client enqueues tasks for background processing.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs the workers that handle tasks. Run blocks until the context
// is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
