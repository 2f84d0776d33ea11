package usecase

import (
	"context"
	"errors"
	"testing"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
)

type fakeOutbound struct {
	summaries []SentMessageSummary
	fail      error
}

func (o *fakeOutbound) NotifyMessageSent(ctx context.Context, summary SentMessageSummary) error {
	if o.fail != nil {
		return o.fail
	}
	o.summaries = append(o.summaries, summary)
	return nil
}

func seedConversation(t *testing.T, repo *fakeRepo, phone, name string) {
	t.Helper()
	if _, err := repo.CreateConversation(context.Background(), conversations.Conversation{
		RestaurantID:  conversations.DefaultRestaurantID,
		CustomerName:  name,
		CustomerPhone: phone,
		Status:        conversations.StatusActive,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSend_PersistsAndNotifies(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	outbound := &fakeOutbound{}
	seedConversation(t, repo, "5511999998888", "Maria")

	uc := NewSendMessageUseCase(repo, notifier, outbound, testLogger())
	sent, err := uc.Execute(context.Background(), SendMessageInput{
		Phone: "5511999998888@s.whatsapp.net",
		Text:  "seu pedido está pronto",
	})
	if err != nil {
		t.Fatal(err)
	}

	if sent.Sender != conversations.SenderServer {
		t.Errorf("sender = %q", sent.Sender)
	}
	if sent.Status != conversations.MessageStatusSent {
		t.Errorf("status = %q", sent.Status)
	}
	if sent.ConversationID != "5511999998888" {
		t.Errorf("conversationId = %q", sent.ConversationID)
	}
	if repo.conversations["5511999998888"].UnreadCount != 0 {
		t.Error("outbound messages must not touch the unread counter")
	}
	if len(notifier.events) != 1 {
		t.Errorf("realtime events = %d, want 1", len(notifier.events))
	}
	if len(outbound.summaries) != 1 {
		t.Fatalf("outbound notifies = %d, want 1", len(outbound.summaries))
	}
	if outbound.summaries[0].CustomerName != "Maria" {
		t.Errorf("summary name = %q", outbound.summaries[0].CustomerName)
	}
}

func TestSend_SkipWebhookSuppressesOutbound(t *testing.T) {
	repo := newFakeRepo()
	outbound := &fakeOutbound{}
	seedConversation(t, repo, "5511999998888", "Maria")

	uc := NewSendMessageUseCase(repo, &fakeNotifier{}, outbound, testLogger())
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		Phone:       "5511999998888",
		Text:        "nota interna",
		SkipWebhook: true,
	}); err != nil {
		t.Fatal(err)
	}

	if len(outbound.summaries) != 0 {
		t.Errorf("outbound notifies = %d, want 0", len(outbound.summaries))
	}
	if len(repo.messages) != 1 {
		t.Errorf("messages = %d, want 1 (message still persisted)", len(repo.messages))
	}
}

func TestSend_UnknownConversation(t *testing.T) {
	uc := NewSendMessageUseCase(newFakeRepo(), &fakeNotifier{}, &fakeOutbound{}, testLogger())

	_, err := uc.Execute(context.Background(), SendMessageInput{Phone: "551100000000", Text: "x"})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestSend_InvalidPhone(t *testing.T) {
	uc := NewSendMessageUseCase(newFakeRepo(), &fakeNotifier{}, &fakeOutbound{}, testLogger())

	_, err := uc.Execute(context.Background(), SendMessageInput{Phone: "abc", Text: "x"})
	if !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("err = %v, want ErrInvalidPhone", err)
	}
}

func TestSend_OutboundFailureDoesNotFailSend(t *testing.T) {
	repo := newFakeRepo()
	seedConversation(t, repo, "5511999998888", "Maria")

	uc := NewSendMessageUseCase(repo, &fakeNotifier{}, &fakeOutbound{fail: errors.New("downstream down")}, testLogger())
	if _, err := uc.Execute(context.Background(), SendMessageInput{Phone: "5511999998888", Text: "oi"}); err != nil {
		t.Errorf("send must succeed even when notify dispatch fails: %v", err)
	}
}
