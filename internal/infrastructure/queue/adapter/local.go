package adapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
)

// LocalDispatcher is an in-process implementation of both port.Client and
// port.Server backed by a bounded channel. It keeps fire-and-forget side
// effects (webhook forwarding, outbound notifies) off the request cycle
// when no Redis instance is available. Tasks are lost on process exit;
// callers that need durability should run the asynq adapter instead.
type LocalDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]port.Handler
	tasks    chan localTask
	logger   *slog.Logger
	closed   bool
}

type localTask struct {
	id      string
	task    port.Task
	timeout time.Duration
}

// NewLocalDispatcher creates a dispatcher with the given buffer size
// (default 256 when <= 0).
func NewLocalDispatcher(bufferSize int, logger *slog.Logger) *LocalDispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &LocalDispatcher{
		handlers: make(map[string]port.Handler),
		tasks:    make(chan localTask, bufferSize),
		logger:   logger,
	}
}

var (
	_ port.Client = (*LocalDispatcher)(nil)
	_ port.Server = (*LocalDispatcher)(nil)
)

// Enqueue hands the task to the worker loop. A full buffer drops the task
// with a log line rather than blocking the caller.
func (d *LocalDispatcher) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("dispatch: task type is required")
	}
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return "", errors.New("dispatch: dispatcher is closed")
	}

	lt := localTask{id: uuid.NewString(), task: t}
	if len(opts) > 0 && opts[0].Timeout > 0 {
		lt.timeout = opts[0].Timeout
	}

	select {
	case d.tasks <- lt:
		return lt.id, nil
	default:
		d.logger.Warn("dispatch buffer full, task dropped", "type", t.Type)
		return "", errors.New("dispatch: buffer full")
	}
}

func (d *LocalDispatcher) Register(taskType string, h port.Handler) {
	d.mu.Lock()
	d.handlers[taskType] = h
	d.mu.Unlock()
}

// Run consumes tasks until the context is canceled. Handler errors are
// logged and never retried.
func (d *LocalDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case lt := <-d.tasks:
			d.dispatch(ctx, lt)
		}
	}
}

func (d *LocalDispatcher) dispatch(ctx context.Context, lt localTask) {
	d.mu.RLock()
	h, ok := d.handlers[lt.task.Type]
	d.mu.RUnlock()
	if !ok {
		d.logger.Warn("no handler registered for task", "type", lt.task.Type)
		return
	}

	taskCtx := ctx
	if lt.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, lt.timeout)
		defer cancel()
	}

	if err := h(taskCtx, lt.task); err != nil {
		d.logger.Error("task failed", "type", lt.task.Type, "id", lt.id, "error", err)
	}
}

func (d *LocalDispatcher) Stop(ctx context.Context) error {
	_ = ctx
	return d.Close()
}

func (d *LocalDispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
