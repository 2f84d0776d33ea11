package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// NotifyMessageTaskType is the queue task name for the notify-on-send
// webhook, fired when an agent reply is created server-side.
const NotifyMessageTaskType = "conversations:notify_send"

const notifyTimeout = 10 * time.Second

// QueueOutboundNotifier implements usecase.OutboundNotifier by enqueueing a
// fire-and-forget delivery task, keeping the outbound POST off the request
// cycle.
type QueueOutboundNotifier struct {
	Client queueport.Client
}

var _ usecase.OutboundNotifier = (*QueueOutboundNotifier)(nil)

func (n *QueueOutboundNotifier) NotifyMessageSent(ctx context.Context, summary usecase.SentMessageSummary) error {
	if instance := os.Getenv("EVOLUTION_INSTANCE_NAME"); instance != "" {
		summary.Instance = instance
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("notify task: encode payload: %w", err)
	}
	_, err = n.Client.Enqueue(ctx, queueport.Task{Type: NotifyMessageTaskType, Payload: b},
		queueport.EnqueueOption{Queue: "webhooks", NoRetry: true, Timeout: notifyTimeout})
	return err
}

// RegisterNotifyMessageTask binds the delivery handler to the worker
// server. Missing configuration or delivery failure is logged and
// swallowed; there is no retry.
func RegisterNotifyMessageTask(srv queueport.Server, logger *slog.Logger) {
	client := &http.Client{Timeout: notifyTimeout}

	srv.Register(NotifyMessageTaskType, func(ctx context.Context, t queueport.Task) error {
		url := os.Getenv("WEBHOOK_SEND_MESSAGE_URL")
		if url == "" {
			logger.Warn("WEBHOOK_SEND_MESSAGE_URL not configured, notify-on-send skipped")
			return nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(t.Payload))
		if err != nil {
			logger.Error("notify-on-send request build failed", "error", err)
			return nil
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			logger.Error("notify-on-send delivery failed", "url", url, "error", err)
			return nil
		}
		defer resp.Body.Close()

		logger.Info("notify-on-send delivered", "url", url, "status", resp.StatusCode)
		return nil
	})
}
