package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/relaydesk/relaybot/core/logger"
	"github.com/relaydesk/relaybot/internal/models"
	"log/slog"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// DefaultLang is assigned to users who never picked a language.
const DefaultLang = "hinglish"

// Store is the persistence gateway over users, requests, bans, and settings.
// Every method runs a single short transaction or statement.
type Store struct {
	db           *sqlx.DB
	ownerID      int64
	threadWindow time.Duration
}

// New builds a Store. ownerID is excluded from user listings; threadWindow
// bounds how long a pending thread accepts continuation parts.
func New(db *sqlx.DB, ownerID int64, threadWindow time.Duration) *Store {
	if threadWindow <= 0 {
		threadWindow = 15 * time.Minute
	}
	return &Store{db: db, ownerID: ownerID, threadWindow: threadWindow}
}

// UpsertUser creates or refreshes a user row. Handle and name are refreshed
// on every contact; language is preserved unless lang is non-empty.
func (s *Store) UpsertUser(ctx context.Context, userID int64, username, firstName, lang string) error {
	const q = `
		INSERT INTO users (user_id, username, first_name, lang, updated_at)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), $5), now())
		ON CONFLICT (user_id) DO UPDATE SET
			username   = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			lang       = COALESCE(NULLIF($4, ''), users.lang),
			updated_at = now()`
	if _, err := s.db.ExecContext(ctx, q, userID, username, firstName, lang, DefaultLang); err != nil {
		return fmt.Errorf("upsert user %d: %w", userID, err)
	}
	return nil
}

// Lang returns the user's stored language preference, or DefaultLang.
func (s *Store) Lang(ctx context.Context, userID int64) (string, error) {
	var lang string
	err := s.db.GetContext(ctx, &lang, `SELECT lang FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultLang, nil
	}
	if err != nil {
		return DefaultLang, fmt.Errorf("get lang for %d: %w", userID, err)
	}
	if lang == "" {
		return DefaultLang, nil
	}
	return lang, nil
}

// CreatedRequest reports the identifiers assigned to a new request.
type CreatedRequest struct {
	RequestID int64
	ThreadID  int64
	PartNo    int
}

// CreateRequest persists a submission, continuing the author's most recent
// pending thread when its newest part is within the recency window,
// otherwise starting a new thread whose id equals the request's own id.
func (s *Store) CreateRequest(ctx context.Context, userID int64, username, text string) (CreatedRequest, error) {
	var out CreatedRequest

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("create request: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var last pendingPart
	err = tx.GetContext(ctx, &last, `
		SELECT thread_id, created_at FROM requests
		WHERE user_id = $1 AND status = $2 AND thread_id IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, models.StatusPending,
	)
	found := &last
	switch {
	case errors.Is(err, sql.ErrNoRows):
		found = nil
	case err != nil:
		return out, fmt.Errorf("create request: find thread: %w", err)
	}

	continueThread := placeSubmission(found, time.Now().UTC(), s.threadWindow)

	partNo := 1
	threadID := sql.NullInt64{}
	if continueThread != 0 {
		threadID = sql.NullInt64{Int64: continueThread, Valid: true}
		var maxPart int
		if err := tx.GetContext(ctx, &maxPart, `
			SELECT COALESCE(MAX(part_no), 0) FROM requests WHERE thread_id = $1`,
			continueThread,
		); err != nil {
			return out, fmt.Errorf("create request: max part: %w", err)
		}
		partNo = nextPartNo(maxPart)
	}

	var requestID int64
	if err := tx.GetContext(ctx, &requestID, `
		INSERT INTO requests (user_id, username, text, status, created_at, thread_id, part_no)
		VALUES ($1, $2, $3, $4, now(), $5, $6)
		RETURNING request_id`,
		userID, username, text, models.StatusPending, threadID, partNo,
	); err != nil {
		return out, fmt.Errorf("create request: insert: %w", err)
	}

	finalThread := requestID
	if threadID.Valid {
		finalThread = threadID.Int64
	} else {
		if _, err := tx.ExecContext(ctx, `
			UPDATE requests SET thread_id = request_id WHERE request_id = $1`,
			requestID,
		); err != nil {
			return out, fmt.Errorf("create request: backfill thread: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("create request: commit: %w", err)
	}

	out = CreatedRequest{RequestID: requestID, ThreadID: finalThread, PartNo: partNo}
	logger.DB.Debug("request created",
		slog.String("event", "request.insert"),
		slog.Int64("request_id", out.RequestID),
		slog.Int64("thread_id", out.ThreadID),
		slog.Int("part_no", out.PartNo),
		slog.Int64("user_id", userID),
	)
	return out, nil
}

// Request fetches a request by id. Returns ErrNotFound if it was cleaned.
func (s *Store) Request(ctx context.Context, requestID int64) (*models.Request, error) {
	var req models.Request
	err := s.db.GetContext(ctx, &req, `
		SELECT request_id, user_id, username, text, status, created_at, thread_id, part_no
		FROM requests WHERE request_id = $1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", requestID, err)
	}
	return &req, nil
}

// SetRequestStatus transitions a request to the given status. Setting the
// same status twice is permitted.
func (s *Store) SetRequestStatus(ctx context.Context, requestID int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE requests SET status = $2 WHERE request_id = $1`, requestID, status)
	if err != nil {
		return fmt.Errorf("set request %d status %s: %w", requestID, status, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchRequests runs the shape-inferred search: handle substring, exact id,
// or body substring. Results are newest-first, capped at limit.
func (s *Store) SearchRequests(ctx context.Context, query string, limit int) ([]models.Request, error) {
	if limit <= 0 {
		limit = 10
	}

	const base = `
		SELECT request_id, user_id, username, text, status, created_at, thread_id, part_no
		FROM requests WHERE %s
		ORDER BY created_at DESC
		LIMIT $2`

	var (
		where string
		arg   any
	)
	kind, term := ClassifyQuery(query)
	switch kind {
	case QueryHandle:
		where, arg = `username ILIKE $1`, "%"+term+"%"
	case QueryNumeric:
		id, err := strconv.ParseInt(term, 10, 64)
		if err != nil {
			return nil, nil
		}
		where, arg = `(user_id = $1 OR request_id = $1)`, id
	default:
		where, arg = `text ILIKE $1`, "%"+term+"%"
	}

	var results []models.Request
	if err := s.db.SelectContext(ctx, &results, fmt.Sprintf(base, where), arg, limit); err != nil {
		return nil, fmt.Errorf("search requests %q: %w", query, err)
	}
	return results, nil
}

// DeleteAllRequests removes every request record and reports how many rows
// were dropped. Irreversible.
func (s *Store) DeleteAllRequests(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests`)
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}
	n, _ := res.RowsAffected()
	logger.DB.Info("requests cleaned",
		slog.String("event", "request.clean"),
		slog.Int64("deleted", n),
	)
	return n, nil
}

// BanUser creates or refreshes a ban record.
func (s *Store) BanUser(ctx context.Context, userID int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "No reason"
	}
	const q = `
		INSERT INTO bans (user_id, reason, banned_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET reason = EXCLUDED.reason, banned_at = now()`
	if _, err := s.db.ExecContext(ctx, q, userID, reason); err != nil {
		return fmt.Errorf("ban user %d: %w", userID, err)
	}
	return nil
}

// UnbanUser removes a ban record; removing a non-existent ban is a no-op.
func (s *Store) UnbanUser(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("unban user %d: %w", userID, err)
	}
	return nil
}

// Ban fetches the active ban for a user, or ErrNotFound.
func (s *Store) Ban(ctx context.Context, userID int64) (*models.Ban, error) {
	var ban models.Ban
	err := s.db.GetContext(ctx, &ban, `SELECT user_id, reason, banned_at FROM bans WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ban %d: %w", userID, err)
	}
	return &ban, nil
}

// IsBanned reports whether a ban record exists for the user.
func (s *Store) IsBanned(ctx context.Context, userID int64) (bool, error) {
	_, err := s.Ban(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListBans returns the newest bans first, capped at limit.
func (s *Store) ListBans(ctx context.Context, limit int) ([]models.Ban, error) {
	if limit <= 0 {
		limit = 20
	}
	var bans []models.Ban
	if err := s.db.SelectContext(ctx, &bans, `
		SELECT user_id, reason, banned_at FROM bans
		ORDER BY banned_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	return bans, nil
}

// Setting returns a persisted configuration value, falling back to the
// process environment (key upper-cased, underscores dropped) when no row
// exists.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return os.Getenv(strings.ReplaceAll(strings.ToUpper(key), "_", "")), nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a configuration value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// PaginatedUsers returns one page of users ordered by most recent activity,
// excluding the owner, plus the total count of listable users.
func (s *Store) PaginatedUsers(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page < 0 {
		page = 0
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM users WHERE user_id <> $1`, s.ownerID); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := s.db.SelectContext(ctx, &users, `
		SELECT user_id, username, first_name, lang, updated_at
		FROM users WHERE user_id <> $1
		ORDER BY updated_at DESC
		OFFSET $2 LIMIT $3`,
		s.ownerID, page*perPage, perPage,
	); err != nil {
		return nil, 0, fmt.Errorf("paginate users page %d: %w", page, err)
	}
	return users, total, nil
}

// UserStats aggregates request count and ban status for one user.
func (s *Store) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT user_id, username, first_name, lang, updated_at
		FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user stats %d: %w", userID, err)
	}

	var reqCount int
	if err := s.db.GetContext(ctx, &reqCount, `
		SELECT COUNT(*) FROM requests WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("user stats %d: count requests: %w", userID, err)
	}

	banned, err := s.IsBanned(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserStats{
		UserID:    user.UserID,
		Username:  user.Username,
		FirstName: user.FirstName,
		ReqCount:  reqCount,
		IsBanned:  banned,
	}, nil
}
