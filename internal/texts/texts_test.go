package texts

import "testing"

func TestLookup(t *testing.T) {
	if got := T(LangEN, "sent_to_admin"); got != "Done. Your message has been sent." {
		t.Fatalf("en lookup = %q", got)
	}
	if got := T(LangHI, "sent_to_admin"); got != "Done, tumhara message send ho gaya." {
		t.Fatalf("hinglish lookup = %q", got)
	}
}

func TestUnknownLangFallsBackToHinglish(t *testing.T) {
	if got := T("fr", "cooldown"); got != T(LangHI, "cooldown") {
		t.Fatalf("unknown lang should use default dialect, got %q", got)
	}
}

func TestUnknownKeyEchoes(t *testing.T) {
	if got := T(LangEN, "no_such_key"); got != "no_such_key" {
		t.Fatalf("unknown key should echo, got %q", got)
	}
}

func TestRetiredKeysEcho(t *testing.T) {
	// The confirm prompt and denial notice are fixed strings in the bot
	// layer; the tables must not carry shadow copies.
	for _, key := range []string{"confirm", "denied"} {
		if got := T(LangHI, key); got != key {
			t.Fatalf("key %q should be out of the table, got %q", key, got)
		}
	}
}

func TestTablesCoverSameKeys(t *testing.T) {
	for k := range en {
		if _, ok := hi[k]; !ok {
			t.Errorf("key %q missing from hinglish table", k)
		}
	}
	for k := range hi {
		if _, ok := en[k]; !ok {
			t.Errorf("key %q missing from english table", k)
		}
	}
}
