package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/application/usecase"
)

// RouteWebhookTaskType is the queue task name that runs the gateway
// pipeline for one delivery, detached from the inbound request cycle.
const RouteWebhookTaskType = "webhook:route"

const routeTimeout = 30 * time.Second

// EnqueueRoute dispatches gateway processing of one raw delivery.
func EnqueueRoute(ctx context.Context, client queueport.Client, raw json.RawMessage) error {
	_, err := client.Enqueue(ctx, queueport.Task{Type: RouteWebhookTaskType, Payload: raw},
		queueport.EnqueueOption{Queue: "webhooks", NoRetry: true, Timeout: routeTimeout})
	return err
}

// RegisterRouteWebhookTask binds the gateway pipeline to the worker server.
func RegisterRouteWebhookTask(srv queueport.Server, uc *usecase.RouteWebhookUseCase, logger *slog.Logger) {
	srv.Register(RouteWebhookTaskType, func(ctx context.Context, t queueport.Task) error {
		if err := uc.Execute(ctx, json.RawMessage(t.Payload)); err != nil {
			// Execute swallows business-level misses; anything else is
			// logged here and still not retried
			logger.Error("gateway routing failed", "error", err)
		}
		return nil
	})
}

// QueueForwarder implements usecase.Forwarder on top of the task queue.
type QueueForwarder struct {
	Client queueport.Client
}

var _ usecase.Forwarder = (*QueueForwarder)(nil)

func (f *QueueForwarder) Forward(ctx context.Context, url string, body json.RawMessage) error {
	return EnqueueForward(ctx, f.Client, url, body)
}
