package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type captureClient struct {
	tasks []queueport.Task
}

func (c *captureClient) Enqueue(ctx context.Context, t queueport.Task, opts ...queueport.EnqueueOption) (string, error) {
	c.tasks = append(c.tasks, t)
	return "id", nil
}

func (c *captureClient) Close() error { return nil }

func gatewayRouter(client queueport.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook-gateway", NewWebhookGatewayController(client, testLogger()).Handle())
	return r
}

func postGateway(t *testing.T, r *gin.Engine, body string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook-gateway", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return w.Code, resp
}

func TestGateway_SingleObjectAcknowledged(t *testing.T) {
	client := &captureClient{}
	code, resp := postGateway(t, gatewayRouter(client), `{"data": {"key": {"senderPn": "551199@x"}}}`)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp["status"] != "received" {
		t.Errorf("status field = %v", resp["status"])
	}
	if resp["count"] != float64(1) {
		t.Errorf("count = %v, want 1", resp["count"])
	}
	if len(client.tasks) != 1 {
		t.Errorf("enqueued = %d, want 1", len(client.tasks))
	}
}

func TestGateway_ArraySplitsIntoDeliveries(t *testing.T) {
	client := &captureClient{}
	code, resp := postGateway(t, gatewayRouter(client), `[{"a":1},{"b":2},{"c":3}]`)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp["count"] != float64(3) {
		t.Errorf("count = %v, want 3", resp["count"])
	}
	if len(client.tasks) != 3 {
		t.Errorf("enqueued = %d, want 3", len(client.tasks))
	}
}

func TestGateway_MalformedBodyStillAcknowledged(t *testing.T) {
	client := &captureClient{}
	code, resp := postGateway(t, gatewayRouter(client), `this is not json`)

	if code != http.StatusOK {
		t.Fatalf("status = %d, the gateway never rejects", code)
	}
	if resp["count"] != float64(0) {
		t.Errorf("count = %v, want 0", resp["count"])
	}
	if len(client.tasks) != 0 {
		t.Errorf("enqueued = %d, want 0", len(client.tasks))
	}
}

func TestSplitDeliveries(t *testing.T) {
	if got := splitDeliveries([]byte(`{"x":1}`)); len(got) != 1 {
		t.Errorf("object: %d deliveries", len(got))
	}
	if got := splitDeliveries([]byte(`[{"x":1},{"y":2}]`)); len(got) != 2 {
		t.Errorf("array: %d deliveries", len(got))
	}
	if got := splitDeliveries([]byte(`"just a string"`)); got != nil {
		t.Errorf("scalar: %v", got)
	}
	if got := splitDeliveries([]byte(`garbage`)); got != nil {
		t.Errorf("garbage: %v", got)
	}
}
