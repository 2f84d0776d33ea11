package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
)

// ForwardWebhookTaskType is the queue task name for delivering a routed
// provider payload to its downstream webhook URL.
const ForwardWebhookTaskType = "webhook:forward"

// ForwardTimeout bounds one delivery attempt. There is no retry; an
// attempt that outlives the timeout is abandoned and logged.
const ForwardTimeout = 10 * time.Second

// ForwardWebhookPayload is the JSON payload transported via the queue.
type ForwardWebhookPayload struct {
	URL  string          `json:"url"`
	Body json.RawMessage `json:"body"`
}

// EnqueueForward dispatches a fire-and-forget forward of body to url.
func EnqueueForward(ctx context.Context, client queueport.Client, url string, body json.RawMessage) error {
	b, err := json.Marshal(ForwardWebhookPayload{URL: url, Body: body})
	if err != nil {
		return fmt.Errorf("forward task: encode payload: %w", err)
	}
	_, err = client.Enqueue(ctx, queueport.Task{Type: ForwardWebhookTaskType, Payload: b},
		queueport.EnqueueOption{Queue: "webhooks", NoRetry: true, Timeout: ForwardTimeout})
	return err
}

// RegisterForwardWebhookTask binds the delivery handler to the worker
// server. Delivery failure is logged and swallowed: the inbound webhook
// was already acknowledged and this component never retries.
func RegisterForwardWebhookTask(srv queueport.Server, logger *slog.Logger) {
	client := &http.Client{Timeout: ForwardTimeout}

	srv.Register(ForwardWebhookTaskType, func(ctx context.Context, t queueport.Task) error {
		var p ForwardWebhookPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			logger.Error("forward task: malformed payload", "error", err)
			return nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(p.Body))
		if err != nil {
			logger.Error("forward task: request build failed", "url", p.URL, "error", err)
			return nil
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			logger.Error("webhook forward failed", "url", p.URL, "error", err)
			return nil
		}
		defer resp.Body.Close()

		logger.Info("webhook forwarded", "url", p.URL, "status", resp.StatusCode)
		return nil
	})
}
