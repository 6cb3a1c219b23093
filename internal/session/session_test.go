package session

import (
	"testing"
	"time"
)

func TestReplySlotLastWriteWins(t *testing.T) {
	s := New()

	if _, ok := s.PendingReply(); ok {
		t.Fatal("fresh service should have no pending reply")
	}

	s.StartReply(100)
	s.StartReply(200)

	id, ok := s.TakeReply()
	if !ok || id != 200 {
		t.Fatalf("TakeReply = (%d, %v), want (200, true)", id, ok)
	}
	if _, ok := s.TakeReply(); ok {
		t.Fatal("slot must be empty after consumption")
	}
}

func TestClearReply(t *testing.T) {
	s := New()
	s.StartReply(7)
	s.ClearReply()
	if _, ok := s.PendingReply(); ok {
		t.Fatal("ClearReply should drop the slot")
	}
}

func TestCooldownExpiry(t *testing.T) {
	s := New()
	now := time.Unix(1_000_000, 0)
	s.SetClock(func() time.Time { return now })

	s.StartCooldown(42, 10*time.Second)

	if remaining, ok := s.OnCooldown(42); !ok || remaining != 10*time.Second {
		t.Fatalf("OnCooldown = (%v, %v), want 10s active", remaining, ok)
	}

	now = now.Add(9 * time.Second)
	if _, ok := s.OnCooldown(42); !ok {
		t.Fatal("cooldown should still be active at 9s")
	}

	now = now.Add(2 * time.Second)
	if _, ok := s.OnCooldown(42); ok {
		t.Fatal("cooldown should have expired at 11s")
	}

	if _, ok := s.OnCooldown(99); ok {
		t.Fatal("unknown user should not be on cooldown")
	}
}

func TestDraftLifecycle(t *testing.T) {
	s := New()

	if _, ok := s.TakeDraft(1); ok {
		t.Fatal("no draft should exist initially")
	}

	s.SetDraft(1, "first")
	s.SetDraft(1, "second")

	text, ok := s.TakeDraft(1)
	if !ok || text != "second" {
		t.Fatalf("TakeDraft = (%q, %v), want latest draft", text, ok)
	}
	if _, ok := s.TakeDraft(1); ok {
		t.Fatal("draft must be consumed")
	}

	s.SetDraft(2, "")
	if _, ok := s.TakeDraft(2); ok {
		t.Fatal("empty draft must behave like no draft")
	}

	s.SetDraft(3, "x")
	s.ClearDraft(3)
	if _, ok := s.TakeDraft(3); ok {
		t.Fatal("ClearDraft should drop the draft")
	}
}
