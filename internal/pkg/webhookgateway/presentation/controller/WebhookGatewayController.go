package controller

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/application/task"
)

const maxWebhookBody = 1 << 20 // 1MB

// WebhookGatewayController is the main entry point for provider messages.
// It acknowledges immediately and dispatches each delivery to the detached
// routing pipeline, so response latency never depends on downstream URLs.
type WebhookGatewayController struct {
	queue  queueport.Client
	logger *slog.Logger
}

func NewWebhookGatewayController(queue queueport.Client, logger *slog.Logger) *WebhookGatewayController {
	return &WebhookGatewayController{queue: queue, logger: logger}
}

// Handle accepts a single JSON object or an array of objects.
func (h *WebhookGatewayController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "received", "message": "webhook recebido", "count": 0})
			return
		}

		deliveries := splitDeliveries(body)
		for _, delivery := range deliveries {
			if err := task.EnqueueRoute(c.Request.Context(), h.queue, delivery); err != nil {
				h.logger.Error("gateway: failed to dispatch delivery", "error", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "received",
			"message": "webhook recebido e em processamento",
			"count":   len(deliveries),
		})
	}
}

// splitDeliveries unpacks a top-level JSON array into individual
// deliveries; a single object is one delivery. Unparseable bodies yield
// none, and the webhook is still acknowledged.
func splitDeliveries(body []byte) []json.RawMessage {
	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		return []json.RawMessage{json.RawMessage(body)}
	}
	return nil
}
