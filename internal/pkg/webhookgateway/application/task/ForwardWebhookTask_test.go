package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
)

func taskLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeServer captures registered handlers so tests can invoke them inline.
type fakeServer struct {
	handlers map[string]queueport.Handler
}

func newFakeServer() *fakeServer {
	return &fakeServer{handlers: make(map[string]queueport.Handler)}
}

func (s *fakeServer) Register(taskType string, h queueport.Handler) { s.handlers[taskType] = h }
func (s *fakeServer) Run(ctx context.Context) error                 { return nil }
func (s *fakeServer) Stop(ctx context.Context) error                { return nil }

type captureClient struct {
	tasks []queueport.Task
	opts  []queueport.EnqueueOption
}

func (c *captureClient) Enqueue(ctx context.Context, t queueport.Task, opts ...queueport.EnqueueOption) (string, error) {
	c.tasks = append(c.tasks, t)
	c.opts = append(c.opts, opts...)
	return "task-1", nil
}

func (c *captureClient) Close() error { return nil }

func TestEnqueueForward_PayloadAndOptions(t *testing.T) {
	client := &captureClient{}
	body := json.RawMessage(`{"event":"messages.upsert"}`)

	if err := EnqueueForward(context.Background(), client, "https://downstream/hook", body); err != nil {
		t.Fatal(err)
	}

	if len(client.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(client.tasks))
	}
	if client.tasks[0].Type != ForwardWebhookTaskType {
		t.Errorf("type = %q", client.tasks[0].Type)
	}

	var p ForwardWebhookPayload
	if err := json.Unmarshal(client.tasks[0].Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p.URL != "https://downstream/hook" {
		t.Errorf("url = %q", p.URL)
	}
	if string(p.Body) != string(body) {
		t.Errorf("body = %s", p.Body)
	}

	if len(client.opts) != 1 || !client.opts[0].NoRetry || client.opts[0].Queue != "webhooks" {
		t.Errorf("opts = %+v", client.opts)
	}
}

func TestForwardHandler_PostsBodyToURL(t *testing.T) {
	var received []byte
	var contentType string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	srv := newFakeServer()
	RegisterForwardWebhookTask(srv, taskLogger())

	payload, _ := json.Marshal(ForwardWebhookPayload{
		URL:  downstream.URL,
		Body: json.RawMessage(`{"hello":"world"}`),
	})

	handler := srv.handlers[ForwardWebhookTaskType]
	if handler == nil {
		t.Fatal("handler not registered")
	}
	if err := handler(context.Background(), queueport.Task{Type: ForwardWebhookTaskType, Payload: payload}); err != nil {
		t.Fatal(err)
	}

	if string(received) != `{"hello":"world"}` {
		t.Errorf("downstream received %s", received)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
}

func TestForwardHandler_DownstreamErrorSwallowed(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer downstream.Close()

	srv := newFakeServer()
	RegisterForwardWebhookTask(srv, taskLogger())

	payload, _ := json.Marshal(ForwardWebhookPayload{URL: downstream.URL, Body: json.RawMessage(`{}`)})
	if err := srv.handlers[ForwardWebhookTaskType](context.Background(), queueport.Task{Payload: payload}); err != nil {
		t.Errorf("handler must swallow downstream errors, got %v", err)
	}
}

func TestForwardHandler_MalformedPayloadSwallowed(t *testing.T) {
	srv := newFakeServer()
	RegisterForwardWebhookTask(srv, taskLogger())

	if err := srv.handlers[ForwardWebhookTaskType](context.Background(), queueport.Task{Payload: []byte("not json")}); err != nil {
		t.Errorf("handler must swallow malformed payloads, got %v", err)
	}
}
