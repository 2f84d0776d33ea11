package usecase

import (
	"context"
	"fmt"
	"time"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

// ConversationView is the list-item shape exposed to the dashboard. The
// public id of a conversation is its customer phone.
type ConversationView struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customerName"`
	CustomerPhone   string     `json:"customerPhone"`
	LastMessage     *string    `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	UnreadCount     int        `json:"unreadCount"`
	Status          string     `json:"status"`
}

// ConversationPage is one page of conversations.
type ConversationPage struct {
	Conversations []ConversationView `json:"conversations"`
	Total         int                `json:"total"`
	Page          int                `json:"page"`
	Limit         int                `json:"limit"`
}

// ListConversationsUseCase returns conversations ordered by last message
// time, optionally filtered by status.
type ListConversationsUseCase struct {
	Repo repository.ConversationRepository
}

func NewListConversationsUseCase(repo repository.ConversationRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, status string, page, limit int) (*ConversationPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	convs, total, err := uc.Repo.ListConversations(ctx, conversations.DefaultRestaurantID, status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		views = append(views, ConversationView{
			ID:              c.CustomerPhone,
			CustomerName:    c.CustomerName,
			CustomerPhone:   c.CustomerPhone,
			LastMessage:     c.LastMessage,
			LastMessageTime: c.LastMessageTime,
			UnreadCount:     c.UnreadCount,
			Status:          c.Status,
		})
	}

	return &ConversationPage{Conversations: views, Total: total, Page: page, Limit: limit}, nil
}
