package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		data        string
		wantUnique  string
		wantPayload string
	}{
		{"unique only", "\fconfirm_yes", "confirm_yes", ""},
		{"unique with payload", "\freply|12345", "reply", "12345"},
		{"payload with separator", "\fuser_page|42|3", "user_page", "42|3"},
		{"no prefix", "reply|7", "reply", "7"},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if unique != tc.wantUnique || payload != tc.wantPayload {
				t.Fatalf("ParseCallbackData(%q) = (%q, %q), want (%q, %q)",
					tc.data, unique, payload, tc.wantUnique, tc.wantPayload)
			}
		})
	}

	if u, p := ParseCallbackData(nil); u != "" || p != "" {
		t.Fatal("nil callback should parse to empty values")
	}
}

func TestSplitTwoInt64(t *testing.T) {
	a, b, err := SplitTwoInt64("42|3", "|")
	if err != nil || a != 42 || b != 3 {
		t.Fatalf("SplitTwoInt64 = (%d, %d, %v)", a, b, err)
	}
	if _, _, err := SplitTwoInt64("", "|"); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, _, err := SplitTwoInt64("42", "|"); err == nil {
		t.Fatal("expected error for single part")
	}
	if _, _, err := SplitTwoInt64("a|b", "|"); err == nil {
		t.Fatal("expected error for non-numeric parts")
	}
}
