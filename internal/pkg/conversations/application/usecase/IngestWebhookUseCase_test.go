package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"testing"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
	repository "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeRepo struct {
	conversations map[string]*conversations.Conversation // keyed by phone
	messages      []conversations.Message
	nextID        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{conversations: make(map[string]*conversations.Conversation)}
}

var _ repository.ConversationRepository = (*fakeRepo)(nil)

func (r *fakeRepo) FindByPhone(ctx context.Context, restaurantID, phone string) (*conversations.Conversation, error) {
	if c, ok := r.conversations[phone]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) CreateConversation(ctx context.Context, c conversations.Conversation) (*conversations.Conversation, error) {
	r.nextID++
	c.ID = "conv-" + strconv.Itoa(r.nextID)
	r.conversations[c.CustomerPhone] = &c
	copied := c
	return &copied, nil
}

func (r *fakeRepo) UpdateConversationName(ctx context.Context, id, name string) error {
	for _, c := range r.conversations {
		if c.ID == id {
			c.CustomerName = name
		}
	}
	return nil
}

func (r *fakeRepo) MessageExists(ctx context.Context, whatsappMessageID string) (bool, error) {
	for _, m := range r.messages {
		if m.WhatsAppMessageID != nil && *m.WhatsAppMessageID == whatsappMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) AppendMessage(ctx context.Context, conversationID string, m conversations.Message, incrementUnread bool) (*conversations.Message, error) {
	if m.WhatsAppMessageID != nil {
		for _, existing := range r.messages {
			if existing.WhatsAppMessageID != nil && *existing.WhatsAppMessageID == *m.WhatsAppMessageID {
				return nil, repository.ErrDuplicateMessage
			}
		}
	}
	r.nextID++
	m.ID = "msg-" + strconv.Itoa(r.nextID)
	m.ConversationID = conversationID
	r.messages = append(r.messages, m)

	for _, c := range r.conversations {
		if c.ID == conversationID {
			c.LastMessage = &m.Text
			c.LastMessageTime = &m.Timestamp
			if incrementUnread {
				c.UnreadCount++
			}
		}
	}
	return &m, nil
}

func (r *fakeRepo) ListConversations(ctx context.Context, restaurantID, status string, page, limit int) ([]conversations.Conversation, int, error) {
	var out []conversations.Conversation
	for _, c := range r.conversations {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListMessages(ctx context.Context, conversationID string, f repository.MessagesFilter) ([]conversations.Message, error) {
	var out []conversations.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	events []any
}

func (n *fakeNotifier) EmitNewMessage(data any) {
	n.events = append(n.events, data)
}

func webhookPayload(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestIngest_CreatesConversationAndMessage(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	uc := NewIngestWebhookUseCase(repo, notifier, testLogger())

	payload := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "MSG-1"},
		"pushName": "Maria",
		"message": {"conversation": "quero uma pizza"},
		"messageTimestamp": 1700000000
	}`)

	result, err := uc.Execute(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Processed != 1 {
		t.Fatalf("result = %+v", result)
	}

	conv := repo.conversations["5511999998888"]
	if conv == nil {
		t.Fatal("conversation not created")
	}
	if conv.CustomerName != "Maria" {
		t.Errorf("name = %q", conv.CustomerName)
	}
	if conv.Status != conversations.StatusActive {
		t.Errorf("status = %q", conv.Status)
	}
	if conv.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", conv.UnreadCount)
	}
	if len(notifier.events) != 1 {
		t.Errorf("events = %d, want 1", len(notifier.events))
	}
}

func TestIngest_DuplicateMessageIDPersistsOnce(t *testing.T) {
	repo := newFakeRepo()
	uc := NewIngestWebhookUseCase(repo, &fakeNotifier{}, testLogger())

	payload := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "DUP-1"},
		"message": {"conversation": "oi"}
	}`)

	for i := 0; i < 2; i++ {
		result, err := uc.Execute(context.Background(), payload)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Success {
			t.Fatalf("delivery %d failed: %+v", i, result)
		}
	}

	if len(repo.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(repo.messages))
	}
	if repo.conversations["5511999998888"].UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", repo.conversations["5511999998888"].UnreadCount)
	}
}

func TestIngest_NameEnrichmentIsOneWay(t *testing.T) {
	repo := newFakeRepo()
	uc := NewIngestWebhookUseCase(repo, &fakeNotifier{}, testLogger())

	// First delivery has no push name: conversation falls back to phone.
	first := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "N1"},
		"message": {"conversation": "a"}
	}`)
	if _, err := uc.Execute(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if got := repo.conversations["5511999998888"].CustomerName; got != "5511999998888" {
		t.Fatalf("fallback name = %q", got)
	}

	// A later delivery with a real name personalizes it.
	second := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "N2"},
		"pushName": "Maria",
		"message": {"conversation": "b"}
	}`)
	if _, err := uc.Execute(context.Background(), second); err != nil {
		t.Fatal(err)
	}
	if got := repo.conversations["5511999998888"].CustomerName; got != "Maria" {
		t.Fatalf("enriched name = %q", got)
	}

	// A different push name never overwrites the personalized one.
	third := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "N3"},
		"pushName": "Outro Nome",
		"message": {"conversation": "c"}
	}`)
	if _, err := uc.Execute(context.Background(), third); err != nil {
		t.Fatal(err)
	}
	if got := repo.conversations["5511999998888"].CustomerName; got != "Maria" {
		t.Fatalf("name overwritten to %q", got)
	}
}

func TestIngest_FromMeDoesNotIncrementUnread(t *testing.T) {
	repo := newFakeRepo()
	uc := NewIngestWebhookUseCase(repo, &fakeNotifier{}, testLogger())

	payload := webhookPayload(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "F1", "fromMe": true},
		"message": {"conversation": "resposta do restaurante"}
	}`)

	if _, err := uc.Execute(context.Background(), payload); err != nil {
		t.Fatal(err)
	}

	if len(repo.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(repo.messages))
	}
	if repo.messages[0].Sender != conversations.SenderServer {
		t.Errorf("sender = %q", repo.messages[0].Sender)
	}
	if repo.conversations["5511999998888"].UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", repo.conversations["5511999998888"].UnreadCount)
	}
}

func TestIngest_UnprocessablePayloadSkips(t *testing.T) {
	uc := NewIngestWebhookUseCase(newFakeRepo(), &fakeNotifier{}, testLogger())

	result, err := uc.Execute(context.Background(), webhookPayload(t, `{"event": "connection.update"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || !result.Skipped {
		t.Fatalf("result = %+v, want skipped success", result)
	}
}

func TestIngest_BadRecordDoesNotFailBatch(t *testing.T) {
	repo := newFakeRepo()
	uc := NewIngestWebhookUseCase(repo, &fakeNotifier{}, testLogger())

	payload := webhookPayload(t, `[
		{"message": {"conversation": "sem telefone"}},
		{"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "OK-1"}, "message": {"conversation": "válida"}}
	]`)

	result, err := uc.Execute(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if result.Processed != 1 {
		t.Fatalf("processed = %d, want 1", result.Processed)
	}
}
