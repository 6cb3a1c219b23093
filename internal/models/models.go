package models

import "time"

// Request status values. A request is created pending and resolved exactly
// once to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is a bot contact. Created on first contact, refreshed on every
// contact, never deleted.
type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	Lang      string    `db:"lang"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Request is one confirmed user submission awaiting owner action.
// ThreadID equals the request's own ID for the first part of a thread.
type Request struct {
	RequestID int64     `db:"request_id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	ThreadID  int64     `db:"thread_id"`
	PartNo    int       `db:"part_no"`
}

// Ban marks a user as blocked. At most one ban per user; presence of the
// row is the sole ban predicate.
type Ban struct {
	UserID   int64     `db:"user_id"`
	Reason   string    `db:"reason"`
	BannedAt time.Time `db:"banned_at"`
}

// Setting is a persisted key/value configuration entry.
type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// UserStats aggregates a user's activity for the admin detail view.
type UserStats struct {
	UserID    int64
	Username  string
	FirstName string
	ReqCount  int
	IsBanned  bool
}
