package relay

import (
	"context"
	"testing"
	"time"

	"github.com/relaydesk/relaybot/internal/models"
	"github.com/relaydesk/relaybot/internal/session"
	"github.com/relaydesk/relaybot/internal/store"
)

const ownerID int64 = 9000

type fakeStore struct {
	nextID   int64
	requests map[int64]*models.Request
	banned   map[int64]bool
	users    map[int64]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		requests: make(map[int64]*models.Request),
		banned:   make(map[int64]bool),
		users:    make(map[int64]string),
	}
}

func (f *fakeStore) UpsertUser(_ context.Context, userID int64, username, _, _ string) error {
	f.users[userID] = username
	return nil
}

func (f *fakeStore) CreateRequest(_ context.Context, userID int64, username, text string) (store.CreatedRequest, error) {
	id := f.nextID
	f.nextID++
	f.requests[id] = &models.Request{
		RequestID: id,
		UserID:    userID,
		Username:  username,
		Text:      text,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		ThreadID:  id,
		PartNo:    1,
	}
	return store.CreatedRequest{RequestID: id, ThreadID: id, PartNo: 1}, nil
}

func (f *fakeStore) Request(_ context.Context, requestID int64) (*models.Request, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeStore) SetRequestStatus(_ context.Context, requestID int64, status string) error {
	req, ok := f.requests[requestID]
	if !ok {
		return store.ErrNotFound
	}
	req.Status = status
	return nil
}

func (f *fakeStore) IsBanned(_ context.Context, userID int64) (bool, error) {
	return f.banned[userID], nil
}

func newEngine(t *testing.T) (*Engine, *fakeStore, *session.Service) {
	t.Helper()
	fs := newFakeStore()
	sess := session.New()
	return New(fs, sess, ownerID, 10*time.Second), fs, sess
}

func TestSubmitConfirmDeliverReply(t *testing.T) {
	ctx := context.Background()
	eng, fs, _ := newEngine(t)
	alice := Identity{ID: 1, Username: "alice"}

	if err := eng.SubmitDraft(ctx, alice, "Hello"); err != nil {
		t.Fatalf("submit draft: %v", err)
	}

	res, err := eng.ConfirmDraft(ctx, alice)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Outcome != ConfirmCreated {
		t.Fatalf("outcome = %v, want created", res.Outcome)
	}
	if res.Created.PartNo != 1 || res.Created.ThreadID != res.Created.RequestID {
		t.Fatalf("first part should start its own thread: %+v", res.Created)
	}
	if res.Text != "Hello" {
		t.Fatalf("confirmed text = %q", res.Text)
	}
	req := fs.requests[res.Created.RequestID]
	if req.Status != models.StatusPending || req.Username != "@alice" {
		t.Fatalf("persisted request = %+v", req)
	}

	start, err := eng.StartReply(ctx, res.Created.RequestID)
	if err != nil || start.Outcome != ReplyStarted {
		t.Fatalf("start reply = %+v, %v", start, err)
	}

	done, err := eng.CompleteReply(ctx)
	if err != nil || done.Outcome != CompleteDelivered {
		t.Fatalf("complete reply = %+v, %v", done, err)
	}
	if done.Request.UserID != alice.ID {
		t.Fatalf("reply routed to %d, want %d", done.Request.UserID, alice.ID)
	}
	if fs.requests[res.Created.RequestID].Status != models.StatusApproved {
		t.Fatal("request should be approved after delivery")
	}
	if _, ok := eng.PendingReply(); ok {
		t.Fatal("reply slot must be cleared after completion")
	}
}

func TestCooldownBlocksResubmission(t *testing.T) {
	ctx := context.Background()
	eng, fs, sess := newEngine(t)
	now := time.Unix(2_000_000, 0)
	sess.SetClock(func() time.Time { return now })
	bob := Identity{ID: 2, Username: "bob"}

	_ = eng.SubmitDraft(ctx, bob, "first")
	if res, _ := eng.ConfirmDraft(ctx, bob); res.Outcome != ConfirmCreated {
		t.Fatal("first submission should succeed")
	}

	gate, remaining, err := eng.GateUser(ctx, bob.ID)
	if err != nil || gate != GateCooldown || remaining <= 0 {
		t.Fatalf("gate = %v remaining=%v err=%v, want cooldown", gate, remaining, err)
	}
	if len(fs.requests) != 1 {
		t.Fatalf("no second request should exist, have %d", len(fs.requests))
	}

	now = now.Add(11 * time.Second)
	if gate, _, _ := eng.GateUser(ctx, bob.ID); gate != GateOK {
		t.Fatal("cooldown should expire after its window")
	}
}

func TestBanGate(t *testing.T) {
	ctx := context.Background()
	eng, fs, _ := newEngine(t)
	eve := Identity{ID: 3, Username: "eve"}
	fs.banned[eve.ID] = true

	gate, _, err := eng.GateUser(ctx, eve.ID)
	if err != nil || gate != GateBanned {
		t.Fatalf("gate = %v, want banned", gate)
	}

	// A stale confirmation from before the ban creates nothing.
	eng.sessions.SetDraft(eve.ID, "sneaky")
	res, err := eng.ConfirmDraft(ctx, eve)
	if err != nil || res.Outcome != ConfirmBanned {
		t.Fatalf("confirm = %+v, want banned", res)
	}
	if len(fs.requests) != 0 {
		t.Fatal("banned user must not create requests")
	}
}

func TestOwnerBypassesGates(t *testing.T) {
	ctx := context.Background()
	eng, fs, sess := newEngine(t)
	fs.banned[ownerID] = true
	sess.StartCooldown(ownerID, time.Hour)

	if gate, _, _ := eng.GateUser(ctx, ownerID); gate != GateOK {
		t.Fatal("owner must bypass ban and cooldown gates")
	}
}

func TestReplySlotSingleValued(t *testing.T) {
	ctx := context.Background()
	eng, fs, _ := newEngine(t)

	a, _ := fs.CreateRequest(ctx, 10, "@a", "first")
	b, _ := fs.CreateRequest(ctx, 11, "@b", "second")

	if r, _ := eng.StartReply(ctx, a.RequestID); r.Outcome != ReplyStarted {
		t.Fatal("start reply A")
	}
	if r, _ := eng.StartReply(ctx, b.RequestID); r.Outcome != ReplyStarted {
		t.Fatal("start reply B")
	}

	done, err := eng.CompleteReply(ctx)
	if err != nil || done.Outcome != CompleteDelivered {
		t.Fatalf("complete = %+v, %v", done, err)
	}
	if done.Request.RequestID != b.RequestID {
		t.Fatalf("completed request %d, want %d (last write wins)", done.Request.RequestID, b.RequestID)
	}
	if fs.requests[a.RequestID].Status != models.StatusPending {
		t.Fatal("request A must remain pending")
	}
	if fs.requests[b.RequestID].Status != models.StatusApproved {
		t.Fatal("request B must be approved")
	}
}

func TestEmptyDraftNeverCreatesRequest(t *testing.T) {
	ctx := context.Background()
	eng, fs, _ := newEngine(t)
	u := Identity{ID: 4}

	// Confirm without any draft (double-tap / restart).
	res, err := eng.ConfirmDraft(ctx, u)
	if err != nil || res.Outcome != ConfirmNoDraft {
		t.Fatalf("confirm = %+v, want no-draft", res)
	}

	// Explicit cancel then confirm.
	_ = eng.SubmitDraft(ctx, u, "draft")
	eng.CancelDraft(u.ID)
	res, err = eng.ConfirmDraft(ctx, u)
	if err != nil || res.Outcome != ConfirmNoDraft {
		t.Fatalf("confirm after cancel = %+v, want no-draft", res)
	}

	if len(fs.requests) != 0 {
		t.Fatal("no request may be created without a draft")
	}
}

func TestCompleteReplyEdgeCases(t *testing.T) {
	ctx := context.Background()
	eng, fs, sess := newEngine(t)

	// No slot set: owner talking to themselves.
	done, err := eng.CompleteReply(ctx)
	if err != nil || done.Outcome != CompleteNoSlot {
		t.Fatalf("complete with no slot = %+v", done)
	}

	// Slot points at a cleaned request.
	sess.StartReply(777)
	done, err = eng.CompleteReply(ctx)
	if err != nil || done.Outcome != CompleteTargetMissing {
		t.Fatalf("complete with missing target = %+v", done)
	}
	if _, ok := sess.PendingReply(); ok {
		t.Fatal("slot must be cleared even when the target vanished")
	}

	// Author banned after the slot was armed.
	created, _ := fs.CreateRequest(ctx, 20, "@late", "hi")
	sess.StartReply(created.RequestID)
	fs.banned[20] = true
	done, err = eng.CompleteReply(ctx)
	if err != nil || done.Outcome != CompleteTargetBanned {
		t.Fatalf("complete with banned author = %+v", done)
	}
	if fs.requests[created.RequestID].Status != models.StatusPending {
		t.Fatal("suppressed delivery must not approve the request")
	}
}

func TestRejectIdempotentAtStorage(t *testing.T) {
	ctx := context.Background()
	eng, fs, _ := newEngine(t)
	created, _ := fs.CreateRequest(ctx, 30, "@r", "nope")

	res, err := eng.Reject(ctx, created.RequestID)
	if err != nil || res.Outcome != RejectDone || !res.NotifyAuthor {
		t.Fatalf("first reject = %+v", res)
	}
	if fs.requests[created.RequestID].Status != models.StatusRejected {
		t.Fatal("status should be rejected")
	}

	// Second reject: status stays rejected, notice re-fires.
	res, err = eng.Reject(ctx, created.RequestID)
	if err != nil || res.Outcome != RejectDone || !res.NotifyAuthor {
		t.Fatalf("second reject = %+v", res)
	}
	if fs.requests[created.RequestID].Status != models.StatusRejected {
		t.Fatal("status should remain rejected")
	}

	// Banned author: storage transition happens, notice suppressed.
	other, _ := fs.CreateRequest(ctx, 31, "@s", "hm")
	fs.banned[31] = true
	res, err = eng.Reject(ctx, other.RequestID)
	if err != nil || res.Outcome != RejectDone || res.NotifyAuthor {
		t.Fatalf("reject banned author = %+v", res)
	}

	// Missing request.
	res, err = eng.Reject(ctx, 999)
	if err != nil || res.Outcome != RejectTargetMissing {
		t.Fatalf("reject missing = %+v", res)
	}
}

func TestStartReplyGuards(t *testing.T) {
	ctx := context.Background()
	eng, fs, sess := newEngine(t)

	if r, _ := eng.StartReply(ctx, 404); r.Outcome != ReplyTargetMissing {
		t.Fatal("missing request should not arm the slot")
	}
	if _, ok := sess.PendingReply(); ok {
		t.Fatal("slot must stay empty for missing target")
	}

	created, _ := fs.CreateRequest(ctx, 40, "@b", "x")
	fs.banned[40] = true
	if r, _ := eng.StartReply(ctx, created.RequestID); r.Outcome != ReplyTargetBanned {
		t.Fatal("banned author should not arm the slot")
	}
	if _, ok := sess.PendingReply(); ok {
		t.Fatal("slot must stay empty for banned author")
	}
}
