package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

// Notifier pushes events to connected realtime subscribers, best-effort.
type Notifier interface {
	EmitNewMessage(data any)
}

// MessageEvent is the realtime summary for a newly persisted message.
type MessageEvent struct {
	ID           string            `json:"id,omitempty"`
	Text         string            `json:"text"`
	Timestamp    string            `json:"timestamp"`
	Sender       string            `json:"sender"`
	Conversation ConversationBrief `json:"conversation"`
}

// ConversationBrief identifies the conversation in realtime events.
type ConversationBrief struct {
	CustomerPhone string `json:"customerPhone"`
	CustomerName  string `json:"customerName"`
}

// IngestResult summarizes one webhook delivery.
type IngestResult struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// IngestWebhookUseCase runs the inbound pipeline: normalize, dedup, persist,
// notify. One delivery may carry several records; records that fail
// normalization or persistence are skipped with a log line so a single bad
// record never fails the batch.
type IngestWebhookUseCase struct {
	Repo     repository.ConversationRepository
	Notifier Notifier
	Logger   *slog.Logger
}

func NewIngestWebhookUseCase(repo repository.ConversationRepository, notifier Notifier, logger *slog.Logger) *IngestWebhookUseCase {
	return &IngestWebhookUseCase{Repo: repo, Notifier: notifier, Logger: logger}
}

// Execute normalizes and persists every processable record in the payload.
func (uc *IngestWebhookUseCase) Execute(ctx context.Context, payload any) (IngestResult, error) {
	incoming := conversations.ExtractIncomingMessages(payload)
	if len(incoming) == 0 {
		return IngestResult{
			Success: true,
			Skipped: true,
			Reason:  "nenhuma mensagem de entrada processável",
		}, nil
	}

	processed := 0
	for _, in := range incoming {
		if err := uc.ingestOne(ctx, in); err != nil {
			uc.Logger.Error("failed to ingest incoming message", "phone", in.Phone, "error", err)
			continue
		}
		processed++
	}

	return IngestResult{Success: true, Processed: processed}, nil
}

func (uc *IngestWebhookUseCase) ingestOne(ctx context.Context, in conversations.IncomingMessage) error {
	conv, err := ensureConversation(ctx, uc.Repo, in.Phone, in.CustomerName)
	if err != nil {
		return err
	}

	// application-level dedup check; the storage uniqueness guard is the
	// authority for the check-then-act race
	if in.MessageID != "" {
		exists, err := uc.Repo.MessageExists(ctx, in.MessageID)
		if err != nil {
			return err
		}
		if exists {
			uc.Logger.Warn("duplicate provider message skipped", "message_id", in.MessageID)
			return nil
		}
	}

	sender := conversations.SenderCustomer
	if in.FromMe {
		sender = conversations.SenderServer
	}

	msgType := in.MessageType
	if msgType == "" {
		msgType = conversations.MessageTypeText
	}

	msg := conversations.Message{
		Text:        in.Text,
		Sender:      sender,
		Status:      conversations.MessageStatusReceived,
		MessageType: msgType,
		Timestamp:   in.Timestamp,
	}
	if in.MessageID != "" {
		id := in.MessageID
		msg.WhatsAppMessageID = &id
	}

	created, err := uc.Repo.AppendMessage(ctx, conv.ID, msg, sender == conversations.SenderCustomer)
	if errors.Is(err, repository.ErrDuplicateMessage) {
		uc.Logger.Warn("duplicate provider message skipped on insert", "message_id", in.MessageID)
		return nil
	}
	if err != nil {
		return err
	}

	uc.Notifier.EmitNewMessage(MessageEvent{
		ID:        created.ID,
		Text:      created.Text,
		Timestamp: created.Timestamp.UTC().Format(time.RFC3339),
		Sender:    created.Sender,
		Conversation: ConversationBrief{
			CustomerPhone: conv.CustomerPhone,
			CustomerName:  conv.CustomerName,
		},
	})
	return nil
}

// ensureConversation finds or creates the conversation for a normalized
// phone. Name enrichment is one-way: a conversation never personalized
// (name empty or equal to its own phone) picks up a better name, but an
// already-personalized name is never overwritten.
func ensureConversation(ctx context.Context, repo repository.ConversationRepository, phone, name string) (*conversations.Conversation, error) {
	existing, err := repo.FindByPhone(ctx, conversations.DefaultRestaurantID, phone)
	if err != nil {
		return nil, err
	}

	normalizedName := strings.TrimSpace(name)
	if normalizedName == "" {
		normalizedName = phone
	}

	if existing != nil {
		neverPersonalized := existing.CustomerName == "" || existing.CustomerName == existing.CustomerPhone
		if neverPersonalized && normalizedName != existing.CustomerName {
			if err := repo.UpdateConversationName(ctx, existing.ID, normalizedName); err != nil {
				return nil, err
			}
			existing.CustomerName = normalizedName
		}
		return existing, nil
	}

	return repo.CreateConversation(ctx, conversations.Conversation{
		RestaurantID:  conversations.DefaultRestaurantID,
		CustomerName:  normalizedName,
		CustomerPhone: phone,
		Status:        conversations.StatusActive,
		UnreadCount:   0,
	})
}
