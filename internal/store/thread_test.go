package store

import (
	"testing"
	"time"
)

func TestPlaceSubmissionContinuesRecentThread(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	last := &pendingPart{ThreadID: 41, CreatedAt: now.Add(-14 * time.Minute)}
	if got := placeSubmission(last, now, window); got != 41 {
		t.Fatalf("placeSubmission = %d, want thread 41", got)
	}

	// One second before the boundary still continues.
	last.CreatedAt = now.Add(-window).Add(time.Second)
	if got := placeSubmission(last, now, window); got != 41 {
		t.Fatalf("just inside window = %d, want thread 41", got)
	}
}

func TestPlaceSubmissionWindowBoundaryStartsNewThread(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	last := &pendingPart{ThreadID: 41, CreatedAt: now.Add(-window)}
	if got := placeSubmission(last, now, window); got != 0 {
		t.Fatalf("part exactly window old must start a new thread, got %d", got)
	}

	last.CreatedAt = now.Add(-window - time.Minute)
	if got := placeSubmission(last, now, window); got != 0 {
		t.Fatalf("stale part must start a new thread, got %d", got)
	}
}

func TestPlaceSubmissionNoPendingHistory(t *testing.T) {
	now := time.Now().UTC()
	if got := placeSubmission(nil, now, 15*time.Minute); got != 0 {
		t.Fatalf("no history must start a new thread, got %d", got)
	}
	// A row that never got its thread id backfilled does not anchor one.
	if got := placeSubmission(&pendingPart{CreatedAt: now}, now, 15*time.Minute); got != 0 {
		t.Fatalf("zero thread id must start a new thread, got %d", got)
	}
}

func TestNextPartNo(t *testing.T) {
	cases := []struct{ max, want int }{
		{0, 1},
		{1, 2},
		{7, 8},
		{-3, 1},
	}
	for _, tc := range cases {
		if got := nextPartNo(tc.max); got != tc.want {
			t.Fatalf("nextPartNo(%d) = %d, want %d", tc.max, got, tc.want)
		}
	}
}
