package conversations

import "time"

// DefaultRestaurantID scopes conversations for the single-tenant deploy.
const DefaultRestaurantID = "default"

// Conversation statuses.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Message senders.
const (
	SenderCustomer = "customer"
	SenderServer   = "server"
)

// Message statuses.
const (
	MessageStatusReceived = "received"
	MessageStatusSent     = "sent"
)

// Message types.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

// Conversation is a per-customer-phone thread aggregating message history
// and unread state. Created on the first inbound message for a phone and
// never auto-deleted. CustomerPhone always holds the normalized phone.
type Conversation struct {
	ID              string     `db:"id"`
	RestaurantID    string     `db:"restaurant_id"`
	CustomerName    string     `db:"customer_name"`
	CustomerPhone   string     `db:"customer_phone"`
	LastMessage     *string    `db:"last_message"`
	LastMessageTime *time.Time `db:"last_message_time"`
	UnreadCount     int        `db:"unread_count"`
	Status          string     `db:"status"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Message is an immutable log entry owned by exactly one conversation.
// WhatsAppMessageID carries the provider id when present; it is unique
// system-wide and backs the dedup guard.
type Message struct {
	ID                string    `db:"id"`
	ConversationID    string    `db:"conversation_id"`
	Text              string    `db:"text"`
	Sender            string    `db:"sender"`
	Status            string    `db:"status"`
	MessageType       string    `db:"message_type"`
	WhatsAppMessageID *string   `db:"whatsapp_message_id"`
	Timestamp         time.Time `db:"timestamp"`
}
