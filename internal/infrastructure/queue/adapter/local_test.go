package adapter

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
)

func dispatcherLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLocalDispatcher_DeliversToHandler(t *testing.T) {
	d := NewLocalDispatcher(8, dispatcherLogger())

	var handled atomic.Int32
	done := make(chan struct{})
	d.Register("test:task", func(ctx context.Context, task port.Task) error {
		if string(task.Payload) != "payload" {
			t.Errorf("payload = %s", task.Payload)
		}
		handled.Add(1)
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	id, err := d.Enqueue(context.Background(), port.Task{Type: "test:task", Payload: []byte("payload")})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Error("expected a task id")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	if handled.Load() != 1 {
		t.Errorf("handled = %d", handled.Load())
	}
}

func TestLocalDispatcher_MissingTypeRejected(t *testing.T) {
	d := NewLocalDispatcher(1, dispatcherLogger())
	if _, err := d.Enqueue(context.Background(), port.Task{}); err == nil {
		t.Error("empty task type should be rejected")
	}
}

func TestLocalDispatcher_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	d := NewLocalDispatcher(1, dispatcherLogger())
	// No Run loop: the single buffer slot fills and the next enqueue drops.
	if _, err := d.Enqueue(context.Background(), port.Task{Type: "t"}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Enqueue(context.Background(), port.Task{Type: "t"}); err == nil {
		t.Error("second enqueue should be dropped")
	}
}

func TestLocalDispatcher_ClosedRejectsEnqueue(t *testing.T) {
	d := NewLocalDispatcher(1, dispatcherLogger())
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Enqueue(context.Background(), port.Task{Type: "t"}); err == nil {
		t.Error("closed dispatcher should reject enqueues")
	}
}
