package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	cacheport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/cache/port"
	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	convusecase "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// Env vars holding the two downstream destinations. Which one receives the
// payload depends on whether the sender is a known customer.
const (
	EnvWebhookExistsClient    = "WEBHOOK_EXISTSCLIENT"
	EnvWebhookNotExistsClient = "WEBHOOK_NOTEXISTSCLIENT"
)

const existsCacheTTL = 5 * time.Minute

// CustomerDirectory answers whether a customer with the given normalized
// phone is on record.
type CustomerDirectory interface {
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// Ingestor runs the conversation persistence pipeline for a delivery.
type Ingestor interface {
	Execute(ctx context.Context, payload any) (convusecase.IngestResult, error)
}

// Forwarder dispatches the raw payload to a downstream URL without
// blocking the caller.
type Forwarder interface {
	Forward(ctx context.Context, url string, body json.RawMessage) error
}

// RouteWebhookUseCase is the stateless per-delivery gateway pipeline:
// extract the sender phone, check customer existence, hand the payload to
// the conversation pipeline best-effort, then forward the original payload
// to the destination resolved from the existence check.
//
// No error on this path ever propagates to the original webhook caller;
// "I received it" is the contract.
type RouteWebhookUseCase struct {
	Customers CustomerDirectory
	Ingest    Ingestor
	Forwarder Forwarder
	Cache     cacheport.Cache // optional; nil disables existence caching
	Logger    *slog.Logger
}

func NewRouteWebhookUseCase(customers CustomerDirectory, ingest Ingestor, forwarder Forwarder, cache cacheport.Cache, logger *slog.Logger) *RouteWebhookUseCase {
	return &RouteWebhookUseCase{Customers: customers, Ingest: ingest, Forwarder: forwarder, Cache: cache, Logger: logger}
}

// Execute routes one raw delivery. It always returns nil for
// business-level misses (no phone, no URL configured); the caller has
// already acknowledged the webhook.
func (uc *RouteWebhookUseCase) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		uc.Logger.Warn("gateway: payload is not a JSON object, dropped", "error", err)
		return nil
	}

	phone := extractSenderPhone(payload)
	if phone == "" {
		uc.Logger.Warn("gateway: no sender phone found in payload (data.key.senderPn)")
		return nil
	}

	exists := uc.customerExists(ctx, phone)

	// persistence and forwarding are independent best-effort side effects
	// of one delivery; a failure here must not abort routing
	toSave := any(payload)
	if data, ok := payload["data"].(map[string]any); ok {
		toSave = data
	}
	if result, err := uc.Ingest.Execute(ctx, toSave); err != nil {
		uc.Logger.Error("gateway: conversation persistence failed", "phone", phone, "error", err)
	} else if result.Skipped {
		uc.Logger.Warn("gateway: delivery not persisted", "phone", phone, "reason", result.Reason)
	} else {
		uc.Logger.Info("gateway: delivery persisted", "phone", phone, "processed", result.Processed)
	}

	url := os.Getenv(EnvWebhookExistsClient)
	envVar := EnvWebhookExistsClient
	if !exists {
		url = os.Getenv(EnvWebhookNotExistsClient)
		envVar = EnvWebhookNotExistsClient
	}
	if url == "" {
		uc.Logger.Warn("gateway: destination not configured, forward skipped", "env", envVar, "phone", phone)
		return nil
	}

	if err := uc.Forwarder.Forward(ctx, url, raw); err != nil {
		uc.Logger.Error("gateway: forward dispatch failed", "url", url, "error", err)
		return nil
	}

	uc.Logger.Info("gateway: delivery routed", "phone", phone, "known_customer", exists, "url", url)
	return nil
}

// customerExists consults the cache before the directory. Only positive
// answers are cached: a newly registered customer must be routed as known
// immediately, while a stale "known" answer is harmless.
func (uc *RouteWebhookUseCase) customerExists(ctx context.Context, phone string) bool {
	cacheKey := "customer:exists:" + phone

	if uc.Cache != nil {
		if v, err := uc.Cache.Get(ctx, cacheKey); err == nil && v == "1" {
			return true
		}
	}

	exists, err := uc.Customers.ExistsByPhone(ctx, phone)
	if err != nil {
		uc.Logger.Error("gateway: customer lookup failed, routing as unknown", "phone", phone, "error", err)
		return false
	}

	if exists && uc.Cache != nil {
		if err := uc.Cache.Set(ctx, cacheKey, "1", existsCacheTTL); err != nil {
			uc.Logger.Warn("gateway: existence cache write failed", "phone", phone, "error", err)
		}
	}
	return exists
}

// extractSenderPhone probes the known sender locations across payload
// shapes: data.key.senderPn, key.senderPn, top-level sender, data.sender.
func extractSenderPhone(payload map[string]any) string {
	candidates := []string{}

	if data, ok := payload["data"].(map[string]any); ok {
		if key, ok := data["key"].(map[string]any); ok {
			if s, ok := key["senderPn"].(string); ok {
				candidates = append(candidates, s)
			}
		}
		if s, ok := data["sender"].(string); ok {
			candidates = append(candidates, s)
		}
	}
	if key, ok := payload["key"].(map[string]any); ok {
		if s, ok := key["senderPn"].(string); ok {
			candidates = append(candidates, s)
		}
	}
	if s, ok := payload["sender"].(string); ok {
		candidates = append(candidates, s)
	}

	for _, raw := range candidates {
		if phone := conversations.NormalizePhone(raw); phone != "" {
			return phone
		}
	}
	return ""
}
