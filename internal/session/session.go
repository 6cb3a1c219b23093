package session

import (
	"sync"
	"time"
)

// Service holds the process-lifetime conversational state: the single
// "owner is composing a reply to request R" slot, per-user submission
// cooldowns, and per-user draft text. Nothing here survives a restart.
//
// All access is mutex-guarded; each inbound event performs a short
// read-modify-write and releases the lock before any transport call.
type Service struct {
	mu sync.Mutex

	replySlot     int64
	replySlotSet  bool
	cooldownUntil map[int64]time.Time
	drafts        map[int64]string

	now func() time.Time
}

// New creates an empty session service.
func New() *Service {
	return &Service{
		cooldownUntil: make(map[int64]time.Time),
		drafts:        make(map[int64]string),
		now:           time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
}

// StartReply points the global reply slot at a request. A prior pending
// reply is silently replaced; last write wins.
func (s *Service) StartReply(requestID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replySlot = requestID
	s.replySlotSet = true
}

// PendingReply returns the request currently awaiting a reply, if any.
func (s *Service) PendingReply() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replySlot, s.replySlotSet
}

// TakeReply consumes the reply slot, returning the target request. The slot
// is cleared regardless of what the caller does next.
func (s *Service) TakeReply() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.replySlot, s.replySlotSet
	s.replySlot = 0
	s.replySlotSet = false
	return id, ok
}

// ClearReply drops any pending reply without consuming it.
func (s *Service) ClearReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replySlot = 0
	s.replySlotSet = false
}

// StartCooldown blocks the user's submissions for the given duration.
func (s *Service) StartCooldown(userID int64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownUntil[userID] = s.now().Add(d)
}

// OnCooldown reports whether the user is still inside a cooldown window
// and, if so, how much of it remains.
func (s *Service) OnCooldown(userID int64) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.cooldownUntil[userID]
	if !ok {
		return 0, false
	}
	remaining := until.Sub(s.now())
	if remaining <= 0 {
		delete(s.cooldownUntil, userID)
		return 0, false
	}
	return remaining, true
}

// SetDraft stores the user's unconfirmed draft, overwriting any prior one.
func (s *Service) SetDraft(userID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = text
}

// TakeDraft consumes and returns the user's draft. Returns false when no
// draft exists (double-tap on confirm, or process restarted).
func (s *Service) TakeDraft(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.drafts[userID]
	if !ok || text == "" {
		delete(s.drafts, userID)
		return "", false
	}
	delete(s.drafts, userID)
	return text, true
}

// ClearDraft drops the user's draft without consuming it.
func (s *Service) ClearDraft(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}
