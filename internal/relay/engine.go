package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relaydesk/relaybot/core/logger"
	"github.com/relaydesk/relaybot/internal/metrics"
	"github.com/relaydesk/relaybot/internal/models"
	"github.com/relaydesk/relaybot/internal/session"
	"github.com/relaydesk/relaybot/internal/store"
	"log/slog"
)

// Store is the persistence surface the engine consumes.
type Store interface {
	UpsertUser(ctx context.Context, userID int64, username, firstName, lang string) error
	CreateRequest(ctx context.Context, userID int64, username, text string) (store.CreatedRequest, error)
	Request(ctx context.Context, requestID int64) (*models.Request, error)
	SetRequestStatus(ctx context.Context, requestID int64, status string) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

// Identity is the sender of an inbound event.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
}

// Handle renders the denormalized handle snapshot stored on requests.
func (id Identity) Handle() string {
	if id.Username != "" {
		return "@" + id.Username
	}
	return "(no username)"
}

// Engine drives the request lifecycle: draft, confirm, submit, reply,
// reject, plus the ban/cooldown gates in front of it. It performs no
// transport calls; handlers render and send its typed outcomes.
type Engine struct {
	store    Store
	sessions *session.Service
	ownerID  int64
	cooldown time.Duration
}

// New builds an engine. The cooldown applies after every confirmed submission.
func New(st Store, sessions *session.Service, ownerID int64, cooldown time.Duration) *Engine {
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &Engine{store: st, sessions: sessions, ownerID: ownerID, cooldown: cooldown}
}

// IsOwner reports whether the identity is the privileged owner.
func (e *Engine) IsOwner(userID int64) bool {
	return userID == e.ownerID
}

// Gate outcome for an inbound user message.
type Gate int

const (
	GateOK Gate = iota
	GateBanned
	GateCooldown
)

// GateUser applies the ban and cooldown preconditions. The owner bypasses
// both checks entirely.
func (e *Engine) GateUser(ctx context.Context, userID int64) (Gate, time.Duration, error) {
	if e.IsOwner(userID) {
		return GateOK, 0, nil
	}
	banned, err := e.store.IsBanned(ctx, userID)
	if err != nil {
		return GateOK, 0, fmt.Errorf("gate user %d: %w", userID, err)
	}
	if banned {
		metrics.SubmissionsBlocked.WithLabelValues("ban").Inc()
		return GateBanned, 0, nil
	}
	if remaining, on := e.sessions.OnCooldown(userID); on {
		metrics.SubmissionsBlocked.WithLabelValues("cooldown").Inc()
		return GateCooldown, remaining, nil
	}
	return GateOK, 0, nil
}

// SubmitDraft stores text as the user's pending draft, overwriting any
// prior unconfirmed one, and refreshes the user record.
func (e *Engine) SubmitDraft(ctx context.Context, user Identity, text string) error {
	if err := e.store.UpsertUser(ctx, user.ID, user.Username, user.FirstName, ""); err != nil {
		return err
	}
	e.sessions.SetDraft(user.ID, text)
	return nil
}

// CancelDraft clears the user's pending draft.
func (e *Engine) CancelDraft(userID int64) {
	e.sessions.ClearDraft(userID)
}

// ConfirmOutcome classifies what happened on draft confirmation.
type ConfirmOutcome int

const (
	// ConfirmCreated means a request was persisted and the owner must be notified.
	ConfirmCreated ConfirmOutcome = iota
	// ConfirmNoDraft means the draft was empty or missing; prompt to re-enter.
	ConfirmNoDraft
	// ConfirmBanned means the author was banned between drafting and confirming.
	ConfirmBanned
)

// ConfirmResult carries the persisted request identifiers on success.
type ConfirmResult struct {
	Outcome ConfirmOutcome
	Created store.CreatedRequest
	Text    string
}

// ConfirmDraft consumes the pending draft and persists it via the threading
// algorithm. An empty or missing draft never creates a request. On success
// the author's cooldown starts.
func (e *Engine) ConfirmDraft(ctx context.Context, user Identity) (ConfirmResult, error) {
	banned, err := e.store.IsBanned(ctx, user.ID)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("confirm draft: %w", err)
	}
	if banned {
		e.sessions.ClearDraft(user.ID)
		return ConfirmResult{Outcome: ConfirmBanned}, nil
	}

	draft, ok := e.sessions.TakeDraft(user.ID)
	if !ok {
		return ConfirmResult{Outcome: ConfirmNoDraft}, nil
	}

	created, err := e.store.CreateRequest(ctx, user.ID, user.Handle(), draft)
	if err != nil {
		// Draft is gone either way; the user re-enters text on failure.
		return ConfirmResult{}, fmt.Errorf("confirm draft: %w", err)
	}

	e.sessions.StartCooldown(user.ID, e.cooldown)
	metrics.RequestsCreated.Inc()
	logger.Relay.Info("request submitted",
		slog.String("event", "request.created"),
		slog.Int64("request_id", created.RequestID),
		slog.Int64("thread_id", created.ThreadID),
		slog.Int("part_no", created.PartNo),
		slog.Int64("user_id", user.ID),
	)

	return ConfirmResult{Outcome: ConfirmCreated, Created: created, Text: draft}, nil
}

// StartReplyOutcome classifies the result of arming the reply slot.
type StartReplyOutcome int

const (
	// ReplyStarted means the slot now points at the request; prompt for text.
	ReplyStarted StartReplyOutcome = iota
	// ReplyTargetMissing means the request no longer exists.
	ReplyTargetMissing
	// ReplyTargetBanned means the author was banned since submitting.
	ReplyTargetBanned
)

// StartReplyResult carries the target request when the slot was armed.
type StartReplyResult struct {
	Outcome StartReplyOutcome
	Request *models.Request
}

// StartReply points the single global reply slot at a request. A pending
// reply to another request is silently replaced.
func (e *Engine) StartReply(ctx context.Context, requestID int64) (StartReplyResult, error) {
	req, err := e.store.Request(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return StartReplyResult{Outcome: ReplyTargetMissing}, nil
	}
	if err != nil {
		return StartReplyResult{}, fmt.Errorf("start reply %d: %w", requestID, err)
	}

	banned, err := e.store.IsBanned(ctx, req.UserID)
	if err != nil {
		return StartReplyResult{}, fmt.Errorf("start reply %d: %w", requestID, err)
	}
	if banned {
		return StartReplyResult{Outcome: ReplyTargetBanned, Request: req}, nil
	}

	e.sessions.StartReply(requestID)
	logger.Relay.Debug("reply slot armed",
		slog.String("event", "reply.start"),
		slog.Int64("request_id", requestID),
		slog.Int64("user_id", req.UserID),
	)
	return StartReplyResult{Outcome: ReplyStarted, Request: req}, nil
}

// CompleteOutcome classifies the result of consuming the reply slot.
type CompleteOutcome int

const (
	// CompleteDelivered means the reply goes to the author and the request is approved.
	CompleteDelivered CompleteOutcome = iota
	// CompleteNoSlot means no reply was pending; the owner is messaging themselves.
	CompleteNoSlot
	// CompleteTargetMissing means the request vanished; the slot was cleared.
	CompleteTargetMissing
	// CompleteTargetBanned means the author was banned; delivery suppressed, slot cleared.
	CompleteTargetBanned
)

// CompleteResult carries the approved request when delivery should happen.
type CompleteResult struct {
	Outcome CompleteOutcome
	Request *models.Request
}

// CompleteReply consumes the pending reply slot. The slot is cleared on
// every path; only CompleteDelivered marks the request approved.
func (e *Engine) CompleteReply(ctx context.Context) (CompleteResult, error) {
	requestID, ok := e.sessions.TakeReply()
	if !ok {
		return CompleteResult{Outcome: CompleteNoSlot}, nil
	}

	req, err := e.store.Request(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return CompleteResult{Outcome: CompleteTargetMissing}, nil
	}
	if err != nil {
		return CompleteResult{}, fmt.Errorf("complete reply %d: %w", requestID, err)
	}

	banned, err := e.store.IsBanned(ctx, req.UserID)
	if err != nil {
		return CompleteResult{}, fmt.Errorf("complete reply %d: %w", requestID, err)
	}
	if banned {
		return CompleteResult{Outcome: CompleteTargetBanned, Request: req}, nil
	}

	if err := e.store.SetRequestStatus(ctx, requestID, models.StatusApproved); err != nil {
		return CompleteResult{}, fmt.Errorf("complete reply %d: %w", requestID, err)
	}

	metrics.RepliesDelivered.Inc()
	logger.Relay.Info("reply delivered",
		slog.String("event", "reply.delivered"),
		slog.Int64("request_id", requestID),
		slog.Int64("user_id", req.UserID),
	)
	return CompleteResult{Outcome: CompleteDelivered, Request: req}, nil
}

// RejectOutcome classifies the result of rejecting a request.
type RejectOutcome int

const (
	// RejectDone means the status is now rejected.
	RejectDone RejectOutcome = iota
	// RejectTargetMissing means the request no longer exists.
	RejectTargetMissing
)

// RejectResult reports whether the author should be notified. Notification
// is suppressed for banned authors. A second reject of an already-resolved
// request still reports NotifyAuthor; the repeat denial notice is accepted
// behavior.
type RejectResult struct {
	Outcome      RejectOutcome
	Request      *models.Request
	NotifyAuthor bool
}

// Reject marks a request rejected.
func (e *Engine) Reject(ctx context.Context, requestID int64) (RejectResult, error) {
	req, err := e.store.Request(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return RejectResult{Outcome: RejectTargetMissing}, nil
	}
	if err != nil {
		return RejectResult{}, fmt.Errorf("reject %d: %w", requestID, err)
	}

	banned, err := e.store.IsBanned(ctx, req.UserID)
	if err != nil {
		return RejectResult{}, fmt.Errorf("reject %d: %w", requestID, err)
	}

	if err := e.store.SetRequestStatus(ctx, requestID, models.StatusRejected); err != nil {
		return RejectResult{}, fmt.Errorf("reject %d: %w", requestID, err)
	}

	metrics.RequestsRejected.Inc()
	logger.Relay.Info("request rejected",
		slog.String("event", "request.rejected"),
		slog.Int64("request_id", requestID),
		slog.Int64("user_id", req.UserID),
	)
	return RejectResult{Outcome: RejectDone, Request: req, NotifyAuthor: !banned}, nil
}

// PendingReply exposes the current reply slot for routing decisions.
func (e *Engine) PendingReply() (int64, bool) {
	return e.sessions.PendingReply()
}
