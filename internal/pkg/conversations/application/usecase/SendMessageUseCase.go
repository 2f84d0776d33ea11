package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

// OutboundNotifier hands the notify-on-send summary to the outbound
// webhook dispatcher. Failure to dispatch is logged, never surfaced.
type OutboundNotifier interface {
	NotifyMessageSent(ctx context.Context, summary SentMessageSummary) error
}

// SentMessageSummary is the flattened payload forwarded when an agent
// reply is created server-side.
type SentMessageSummary struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	Sender         string `json:"sender"`
	Timestamp      string `json:"timestamp"`
	Status         string `json:"status"`
	CustomerName   string `json:"customerName"`
	Instance       string `json:"instance,omitempty"`
}

// SendMessageInput carries the data for a server-side (agent) message.
type SendMessageInput struct {
	Phone       string
	Text        string
	MessageType string
	// SkipWebhook suppresses the notify-on-send forward while still
	// persisting and broadcasting the message.
	SkipWebhook bool
}

// SentMessage is the API response for a sent message.
type SentMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	Sender         string `json:"sender"`
	Timestamp      string `json:"timestamp"`
	Status         string `json:"status"`
}

// SendMessageUseCase persists an outbound message, broadcasts it, and
// dispatches the notify-on-send webhook.
type SendMessageUseCase struct {
	Repo     repository.ConversationRepository
	Notifier Notifier
	Outbound OutboundNotifier
	Logger   *slog.Logger
}

func NewSendMessageUseCase(repo repository.ConversationRepository, notifier Notifier, outbound OutboundNotifier, logger *slog.Logger) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Notifier: notifier, Outbound: outbound, Logger: logger}
}

// Execute sends a message into the conversation identified by phone.
// Outbound messages never touch the unread counter.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SentMessage, error) {
	phone := conversations.NormalizePhone(in.Phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	conv, err := uc.Repo.FindByPhone(ctx, conversations.DefaultRestaurantID, phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	msgType := in.MessageType
	if msgType == "" {
		msgType = conversations.MessageTypeText
	}

	msg := conversations.Message{
		Text:        in.Text,
		Sender:      conversations.SenderServer,
		Status:      conversations.MessageStatusSent,
		MessageType: msgType,
		Timestamp:   time.Now().UTC(),
	}

	created, err := uc.Repo.AppendMessage(ctx, conv.ID, msg, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ts := created.Timestamp.UTC().Format(time.RFC3339)

	uc.Notifier.EmitNewMessage(MessageEvent{
		ID:        created.ID,
		Text:      created.Text,
		Timestamp: ts,
		Sender:    created.Sender,
		Conversation: ConversationBrief{
			CustomerPhone: conv.CustomerPhone,
			CustomerName:  conv.CustomerName,
		},
	})

	if !in.SkipWebhook && uc.Outbound != nil {
		summary := SentMessageSummary{
			ID:             created.ID,
			ConversationID: conv.CustomerPhone,
			Text:           created.Text,
			Sender:         created.Sender,
			Timestamp:      ts,
			Status:         created.Status,
			CustomerName:   conv.CustomerName,
		}
		if err := uc.Outbound.NotifyMessageSent(ctx, summary); err != nil {
			uc.Logger.Error("failed to dispatch notify-on-send webhook", "message_id", created.ID, "error", err)
		}
	}

	return &SentMessage{
		ID:             created.ID,
		ConversationID: conv.CustomerPhone,
		Text:           created.Text,
		Sender:         created.Sender,
		Timestamp:      ts,
		Status:         created.Status,
	}, nil
}
