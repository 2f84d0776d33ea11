package conversations

import (
	"strconv"
	"time"
)

// PlaceholderText stands in for message bodies the normalizer cannot read
// (stickers, reactions, unsupported types). The pipeline persists the
// placeholder rather than dropping the message.
const PlaceholderText = "[Mensagem sem texto]"

// IncomingMessage is the canonical record produced from one provider
// webhook delivery, whatever shape it arrived in.
type IncomingMessage struct {
	Phone        string
	Text         string
	Timestamp    time.Time
	MessageID    string
	CustomerName string
	MessageType  string
	FromMe       bool
}

// jsonRecord is a decoded JSON object.
type jsonRecord = map[string]any

// ExtractIncomingMessages normalizes an arbitrary decoded JSON payload
// (single object or array of objects, possibly wrapped in "data" or
// "data.messages") into zero or more IncomingMessages.
//
// Providers evolve payload shape without versioning, so extraction is
// tolerant by construction: each candidate record is matched against a
// closed set of recognized shapes, and records that yield no phone are
// skipped silently instead of failing the batch.
func ExtractIncomingMessages(payload any) []IncomingMessage {
	var out []IncomingMessage
	for _, record := range collectRecords(payload) {
		if msg, ok := extractRecord(record); ok {
			out = append(out, msg)
		}
	}
	return out
}

// collectRecords flattens one level of array / "data" / "data.messages"
// wrapping, the nesting variants observed across provider versions.
func collectRecords(payload any) []jsonRecord {
	var records []jsonRecord

	switch v := payload.(type) {
	case []any:
		for _, item := range v {
			if rec, ok := item.(jsonRecord); ok {
				records = append(records, unwrap(rec)...)
			}
		}
	case jsonRecord:
		records = unwrap(v)
	}
	return records
}

func unwrap(rec jsonRecord) []jsonRecord {
	// envelope variant: the message record lives under "data"
	if data := getRecord(rec, "data"); data != nil {
		// batch variant: "data.messages" is a list of records
		if list, ok := data["messages"].([]any); ok {
			var records []jsonRecord
			for _, item := range list {
				if inner, ok := item.(jsonRecord); ok {
					records = append(records, inner)
				}
			}
			if len(records) > 0 {
				return records
			}
		}
		return []jsonRecord{data}
	}
	if list, ok := rec["messages"].([]any); ok {
		var records []jsonRecord
		for _, item := range list {
			if inner, ok := item.(jsonRecord); ok {
				records = append(records, inner)
			}
		}
		if len(records) > 0 {
			return records
		}
	}
	return []jsonRecord{rec}
}

// extractRecord maps one unwrapped record to the canonical form. A record
// without a resolvable phone is not an error, just not a message.
func extractRecord(rec jsonRecord) (IncomingMessage, bool) {
	key := getRecord(rec, "key")

	phone := extractPhone(rec, key)
	if phone == "" {
		return IncomingMessage{}, false
	}

	text, msgType := extractText(getRecord(rec, "message"))

	var messageID string
	if key != nil {
		messageID = getString(key, "id")
	}
	if messageID == "" {
		messageID = getString(rec, "messageId")
	}

	ts, tsPresent := extractTimestamp(rec, key)

	return IncomingMessage{
		Phone:        phone,
		Text:         text,
		Timestamp:    buildTimestamp(ts, tsPresent),
		MessageID:    messageID,
		CustomerName: getString(rec, "pushName"),
		MessageType:  msgType,
		FromMe:       key != nil && getBool(key, "fromMe"),
	}, true
}

// extractPhone probes the known sender-identifier locations in order until
// one yields digits. senderPn is preferred over remoteJid because group
// messages carry the group jid in remoteJid.
func extractPhone(rec, key jsonRecord) string {
	candidates := []string{}
	if key != nil {
		candidates = append(candidates, getString(key, "senderPn"), getString(key, "remoteJid"))
	}
	candidates = append(candidates, getString(rec, "sender"), getString(rec, "phone"))

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if phone := NormalizePhone(raw); phone != "" {
			return phone
		}
	}
	return ""
}

// extractText resolves the message body across the known message-shape
// variants, falling back to a placeholder for unsupported types.
func extractText(message jsonRecord) (text, msgType string) {
	if message == nil {
		return PlaceholderText, MessageTypeText
	}

	if s := getString(message, "conversation"); s != "" {
		return s, MessageTypeText
	}
	if ext := getRecord(message, "extendedTextMessage"); ext != nil {
		if s := getString(ext, "text"); s != "" {
			return s, MessageTypeText
		}
	}
	if img := getRecord(message, "imageMessage"); img != nil {
		if s := getString(img, "caption"); s != "" {
			return s, MessageTypeImage
		}
		return "[Imagem]", MessageTypeImage
	}
	if doc := getRecord(message, "documentMessage"); doc != nil {
		if s := getString(doc, "caption"); s != "" {
			return s, MessageTypeDocument
		}
		if s := getString(doc, "fileName"); s != "" {
			return s, MessageTypeDocument
		}
		return "[Documento]", MessageTypeDocument
	}
	if getRecord(message, "audioMessage") != nil {
		return "[Áudio]", MessageTypeAudio
	}
	if btn := getRecord(message, "buttonsResponseMessage"); btn != nil {
		if s := getString(btn, "selectedDisplayText"); s != "" {
			return s, MessageTypeText
		}
	}
	if list := getRecord(message, "listResponseMessage"); list != nil {
		if s := getString(list, "title"); s != "" {
			return s, MessageTypeText
		}
	}
	if inter := getRecord(message, "interactiveResponseMessage"); inter != nil {
		if body := getRecord(inter, "body"); body != nil {
			if s := getString(body, "text"); s != "" {
				return s, MessageTypeText
			}
		}
	}

	return PlaceholderText, MessageTypeText
}

func extractTimestamp(rec, key jsonRecord) (float64, bool) {
	if v, ok := getNumber(rec, "messageTimestamp"); ok {
		return v, true
	}
	if msg := getRecord(rec, "message"); msg != nil {
		if v, ok := getNumber(msg, "messageTimestamp"); ok {
			return v, true
		}
	}
	if key != nil {
		if v, ok := getNumber(key, "messageTimestamp"); ok {
			return v, true
		}
	}
	return 0, false
}

// buildTimestamp interprets numeric provider timestamps: values above 1e12
// are milliseconds since epoch, otherwise seconds. Absent means now.
func buildTimestamp(value float64, present bool) time.Time {
	if !present || value <= 0 {
		return time.Now().UTC()
	}
	if value > 1e12 {
		return time.UnixMilli(int64(value)).UTC()
	}
	return time.Unix(int64(value), 0).UTC()
}

func getRecord(rec jsonRecord, field string) jsonRecord {
	if rec == nil {
		return nil
	}
	if inner, ok := rec[field].(jsonRecord); ok {
		return inner
	}
	return nil
}

func getString(rec jsonRecord, field string) string {
	if rec == nil {
		return ""
	}
	if s, ok := rec[field].(string); ok {
		return s
	}
	return ""
}

func getNumber(rec jsonRecord, field string) (float64, bool) {
	if rec == nil {
		return 0, false
	}
	switch v := rec[field].(type) {
	case float64:
		return v, true
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func getBool(rec jsonRecord, field string) bool {
	switch v := rec[field].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	case float64:
		return v == 1
	}
	return false
}
