package adapter

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

const uniqueViolation = "23505"

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

var _ repository.ConversationRepository = (*PgConversationRepository)(nil)

const conversationColumns = `id::text, restaurant_id, customer_name, customer_phone,
	last_message, last_message_time, unread_count, status, created_at`

func (r *PgConversationRepository) FindByPhone(ctx context.Context, restaurantID, phone string) (*conversations.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE restaurant_id = $1 AND customer_phone = $2
	`, restaurantID, phone)

	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PgConversationRepository) CreateConversation(ctx context.Context, c conversations.Conversation) (*conversations.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (restaurant_id, customer_name, customer_phone, status, unread_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+conversationColumns+`
	`, c.RestaurantID, c.CustomerName, c.CustomerPhone, c.Status, c.UnreadCount)

	created, err := scanConversation(row)
	if isUniqueViolation(err) {
		// a concurrent first-message for the same phone won the race
		return r.FindByPhone(ctx, c.RestaurantID, c.CustomerPhone)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PgConversationRepository) UpdateConversationName(ctx context.Context, id, name string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgConversationRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE conversations SET customer_name = $2 WHERE id = $1::uuid
	`, id, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgConversationRepository) MessageExists(ctx context.Context, whatsappMessageID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgConversationRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM messages WHERE whatsapp_message_id = $1)
	`, whatsappMessageID).Scan(&exists)
	return exists, err
}

// AppendMessage runs the message insert and the conversation last-message
// update in one transaction so a partial failure never leaves the
// conversation pointing at a message that was not committed.
func (r *PgConversationRepository) AppendMessage(ctx context.Context, conversationID string, m conversations.Message, incrementUnread bool) (*conversations.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, text, sender, status, message_type, whatsapp_message_id, timestamp)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING id::text
	`, conversationID, m.Text, m.Sender, m.Status, m.MessageType, m.WhatsAppMessageID, m.Timestamp).Scan(&m.ID)
	if isUniqueViolation(err) {
		return nil, repository.ErrDuplicateMessage
	}
	if err != nil {
		return nil, err
	}

	unreadDelta := 0
	if incrementUnread {
		unreadDelta = 1
	}
	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET last_message = $2, last_message_time = $3, unread_count = unread_count + $4
		WHERE id = $1::uuid
	`, conversationID, m.Text, m.Timestamp, unreadDelta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	m.ConversationID = conversationID
	return &m, nil
}

func (r *PgConversationRepository) ListConversations(ctx context.Context, restaurantID, status string, page, limit int) ([]conversations.Conversation, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("PgConversationRepository: nil pool")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := `WHERE restaurant_id = $1`
	args := []any{restaurantID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM conversations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations ` + where + `
		ORDER BY last_message_time DESC NULLS LAST
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []conversations.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return out, total, nil
}

func (r *PgConversationRepository) ListMessages(ctx context.Context, conversationID string, f repository.MessagesFilter) ([]conversations.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}

	query := `
		SELECT id::text, conversation_id::text, text, sender, status, message_type, whatsapp_message_id, timestamp
		FROM messages
		WHERE conversation_id = $1::uuid`
	args := []any{conversationID}

	if f.Before != nil {
		args = append(args, *f.Before)
		query += ` AND timestamp < ` + placeholder(len(args))
	}
	if f.After != nil {
		args = append(args, *f.After)
		query += ` AND timestamp > ` + placeholder(len(args))
	}
	args = append(args, f.Limit)
	query += ` ORDER BY timestamp ASC LIMIT ` + placeholder(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []conversations.Message
	for rows.Next() {
		var m conversations.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Text, &m.Sender, &m.Status, &m.MessageType, &m.WhatsAppMessageID, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func scanConversation(row pgx.Row) (*conversations.Conversation, error) {
	var c conversations.Conversation
	err := row.Scan(&c.ID, &c.RestaurantID, &c.CustomerName, &c.CustomerPhone,
		&c.LastMessage, &c.LastMessageTime, &c.UnreadCount, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
