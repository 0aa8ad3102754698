package channel

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Hello, I want to book a room for 2 nights", "en"},
		{"good morning, is my booking confirmed?", "en"},
		{"Hola, quiero reservar una habitación doble", "es"},
		{"buenas tardes, ¿sigue en pie mi reserva?", "es"},
		{"03/10/2025", ""},
		{"ok", ""},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
