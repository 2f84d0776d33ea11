package repository

import (
	"context"
	"errors"
	"time"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
)

// ErrDuplicateMessage reports that a message with the same provider id was
// already persisted. The storage layer's uniqueness guard is authoritative;
// callers treat this as a silent skip, not a failure.
var ErrDuplicateMessage = errors.New("conversations: duplicate provider message id")

// MessagesFilter bounds a message page by count and optional timestamp
// window.
type MessagesFilter struct {
	Limit  int
	Before *time.Time
	After  *time.Time
}

// ConversationRepository defines persistence operations for the
// conversations module.
type ConversationRepository interface {
	// FindByPhone returns the conversation for the normalized phone, or
	// (nil, nil) when none exists.
	FindByPhone(ctx context.Context, restaurantID, phone string) (*conversations.Conversation, error)

	// CreateConversation inserts a new conversation and returns it with its
	// generated id. When a concurrent insert for the same phone wins the
	// race on the uniqueness constraint, the existing row is returned.
	CreateConversation(ctx context.Context, c conversations.Conversation) (*conversations.Conversation, error)

	// UpdateConversationName sets the display name for a conversation.
	UpdateConversationName(ctx context.Context, id, name string) error

	// MessageExists reports whether a message with the given provider id
	// was already persisted.
	MessageExists(ctx context.Context, whatsappMessageID string) (bool, error)

	// AppendMessage inserts the message and updates the parent
	// conversation's last-message fields in one transaction, incrementing
	// the unread counter when incrementUnread is set. Returns
	// ErrDuplicateMessage when the provider id is already present.
	AppendMessage(ctx context.Context, conversationID string, m conversations.Message, incrementUnread bool) (*conversations.Message, error)

	// ListConversations returns one page ordered by last message time
	// descending, plus the total row count for the filter.
	ListConversations(ctx context.Context, restaurantID, status string, page, limit int) ([]conversations.Conversation, int, error)

	// ListMessages returns messages for a conversation in ascending
	// timestamp order, bounded by the filter.
	ListMessages(ctx context.Context, conversationID string, f MessagesFilter) ([]conversations.Message, error)
}
