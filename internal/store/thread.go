package store

import "time"

// pendingPart is the newest pending submission an author has on record.
type pendingPart struct {
	ThreadID  int64     `db:"thread_id"`
	CreatedAt time.Time `db:"created_at"`
}

// placeSubmission decides where a new submission lands: the id of the
// thread to continue when the author's newest pending part is younger than
// the window, or zero for a fresh thread. A part exactly window old starts
// a new thread.
func placeSubmission(last *pendingPart, now time.Time, window time.Duration) int64 {
	if last == nil || last.ThreadID == 0 {
		return 0
	}
	if now.Sub(last.CreatedAt) >= window {
		return 0
	}
	return last.ThreadID
}

// nextPartNo numbers a continuation part after the thread's current
// maximum. maxPart is zero when the thread has no parts yet.
func nextPartNo(maxPart int) int {
	if maxPart < 0 {
		maxPart = 0
	}
	return maxPart + 1
}
