package conversations

import (
	"encoding/json"
	"testing"
	"time"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestExtract_TopLevelRecord(t *testing.T) {
	payload := decode(t, `{
		"key": {"remoteJid": "5511999998888@s.whatsapp.net", "id": "ABC123", "fromMe": false},
		"pushName": "Maria",
		"message": {"conversation": "olá"},
		"messageTimestamp": 1700000000
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Phone != "5511999998888" {
		t.Errorf("phone = %q", m.Phone)
	}
	if m.Text != "olá" {
		t.Errorf("text = %q", m.Text)
	}
	if m.MessageID != "ABC123" {
		t.Errorf("messageId = %q", m.MessageID)
	}
	if m.CustomerName != "Maria" {
		t.Errorf("name = %q", m.CustomerName)
	}
	if m.FromMe {
		t.Error("fromMe should be false")
	}
}

func TestExtract_DataWrapped(t *testing.T) {
	payload := decode(t, `{
		"event": "messages.upsert",
		"data": {
			"key": {"senderPn": "5511988887777@s.whatsapp.net", "id": "X1"},
			"message": {"extendedTextMessage": {"text": "oi"}}
		}
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Phone != "5511988887777" {
		t.Errorf("phone = %q", msgs[0].Phone)
	}
	if msgs[0].Text != "oi" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestExtract_DataMessagesBatch(t *testing.T) {
	payload := decode(t, `{
		"data": {"messages": [
			{"key": {"remoteJid": "551100000001@s.whatsapp.net", "id": "A"}, "message": {"conversation": "um"}},
			{"key": {"remoteJid": "551100000002@s.whatsapp.net", "id": "B"}, "message": {"conversation": "dois"}}
		]}
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "um" || msgs[1].Text != "dois" {
		t.Errorf("texts = %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestExtract_ArrayBatch(t *testing.T) {
	payload := decode(t, `[
		{"key": {"remoteJid": "551100000003@s.whatsapp.net"}, "message": {"conversation": "a"}},
		{"sender": "551100000004@s.whatsapp.net", "message": {"conversation": "b"}}
	]`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestExtract_SenderPnPreferredOverRemoteJid(t *testing.T) {
	payload := decode(t, `{
		"key": {"senderPn": "5511977776666@s.whatsapp.net", "remoteJid": "123456789-group@g.us"},
		"message": {"conversation": "no grupo"}
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Phone != "5511977776666" {
		t.Errorf("phone = %q, want senderPn digits", msgs[0].Phone)
	}
}

func TestExtract_NoPhoneSkipped(t *testing.T) {
	payload := decode(t, `{"message": {"conversation": "sem remetente"}}`)
	if msgs := ExtractIncomingMessages(payload); len(msgs) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(msgs))
	}
}

func TestExtract_PlaceholderForUnreadableBody(t *testing.T) {
	payload := decode(t, `{
		"key": {"remoteJid": "551100000005@s.whatsapp.net"},
		"message": {"stickerMessage": {}}
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != PlaceholderText {
		t.Errorf("text = %q, want placeholder", msgs[0].Text)
	}
}

func TestExtract_MediaVariants(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		wantText string
		wantType string
	}{
		{"image caption", `{"imageMessage": {"caption": "foto do prato"}}`, "foto do prato", MessageTypeImage},
		{"image no caption", `{"imageMessage": {}}`, "[Imagem]", MessageTypeImage},
		{"audio", `{"audioMessage": {}}`, "[Áudio]", MessageTypeAudio},
		{"document filename", `{"documentMessage": {"fileName": "cardapio.pdf"}}`, "cardapio.pdf", MessageTypeDocument},
		{"buttons response", `{"buttonsResponseMessage": {"selectedDisplayText": "Sim"}}`, "Sim", MessageTypeText},
		{"list response", `{"listResponseMessage": {"title": "Pizza"}}`, "Pizza", MessageTypeText},
		{"interactive response", `{"interactiveResponseMessage": {"body": {"text": "Confirmar"}}}`, "Confirmar", MessageTypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := decode(t, `{"key": {"remoteJid": "551100000006@s.whatsapp.net"}, "message": `+tc.message+`}`)
			msgs := ExtractIncomingMessages(payload)
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d", len(msgs))
			}
			if msgs[0].Text != tc.wantText {
				t.Errorf("text = %q, want %q", msgs[0].Text, tc.wantText)
			}
			if msgs[0].MessageType != tc.wantType {
				t.Errorf("type = %q, want %q", msgs[0].MessageType, tc.wantType)
			}
		})
	}
}

func TestBuildTimestamp_SecondsVsMilliseconds(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()

	fromSeconds := buildTimestamp(1700000000, true)
	fromMillis := buildTimestamp(1700000000000, true)

	if !fromSeconds.Equal(want) {
		t.Errorf("seconds: got %v, want %v", fromSeconds, want)
	}
	if !fromMillis.Equal(want) {
		t.Errorf("milliseconds: got %v, want %v", fromMillis, want)
	}
}

func TestBuildTimestamp_AbsentMeansNow(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	got := buildTimestamp(0, false)
	after := time.Now().UTC().Add(time.Second)

	if got.Before(before) || got.After(after) {
		t.Errorf("absent timestamp should be roughly now, got %v", got)
	}
}

func TestExtract_TimestampFromKey(t *testing.T) {
	payload := decode(t, `{
		"key": {"remoteJid": "551100000007@s.whatsapp.net", "messageTimestamp": "1700000000"},
		"message": {"conversation": "x"}
	}`)

	msgs := ExtractIncomingMessages(payload)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if !msgs[0].Timestamp.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("timestamp = %v", msgs[0].Timestamp)
	}
}
