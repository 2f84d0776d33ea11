package conversations

import "strings"

// NormalizePhone reduces a raw sender identifier to the canonical phone
// form used as the join key across conversations, customers and inbound
// payloads: digits only, no "+", no provider domain suffix.
//
// Provider identifiers arrive in shapes like "553182366026@s.whatsapp.net";
// everything after the "@" is discarded before filtering to digits. An
// empty result means the input carried no phone at all.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
