package usecase

import (
	"context"
	"fmt"
	"time"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

// MessagesQuery bounds the message page.
type MessagesQuery struct {
	Limit  int
	Before *time.Time
	After  *time.Time
}

// MessageView is one message as exposed by the read API. ConversationID is
// the public conversation id, i.e. the customer phone.
type MessageView struct {
	ID                string    `json:"id"`
	ConversationID    string    `json:"conversationId"`
	Text              string    `json:"text"`
	Sender            string    `json:"sender"`
	Status            string    `json:"status"`
	MessageType       string    `json:"messageType"`
	Timestamp         time.Time `json:"timestamp"`
	WhatsAppMessageID *string   `json:"whatsappMessageId"`
}

// MessagesPage is the read-API response for a conversation's messages.
type MessagesPage struct {
	Conversation ConversationHeader `json:"conversation"`
	Messages     []MessageView      `json:"messages"`
	HasMore      bool               `json:"hasMore"`
}

// ConversationHeader identifies the conversation a page belongs to.
type ConversationHeader struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

// GetMessagesUseCase pages through a conversation's message log by phone.
type GetMessagesUseCase struct {
	Repo repository.ConversationRepository
}

func NewGetMessagesUseCase(repo repository.ConversationRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, phone string, q MessagesQuery) (*MessagesPage, error) {
	normalized := conversations.NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrInvalidPhone
	}

	conv, err := uc.Repo.FindByPhone(ctx, conversations.DefaultRestaurantID, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}

	msgs, err := uc.Repo.ListMessages(ctx, conv.ID, repository.MessagesFilter{
		Limit:  q.Limit,
		Before: q.Before,
		After:  q.After,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{
			ID:                m.ID,
			ConversationID:    conv.CustomerPhone,
			Text:              m.Text,
			Sender:            m.Sender,
			Status:            m.Status,
			MessageType:       m.MessageType,
			Timestamp:         m.Timestamp,
			WhatsAppMessageID: m.WhatsAppMessageID,
		})
	}

	return &MessagesPage{
		Conversation: ConversationHeader{
			ID:            conv.CustomerPhone,
			CustomerName:  conv.CustomerName,
			CustomerPhone: conv.CustomerPhone,
		},
		Messages: views,
		HasMore:  len(msgs) == q.Limit,
	}, nil
}
