package conversations

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5511999998888@s.whatsapp.net", "5511999998888"},
		{"+55 (11) 99999-8888", "5511999998888"},
		{"123456789-group@g.us", "123456789"},
		{"5511999998888", "5511999998888"},
		{"abc", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
