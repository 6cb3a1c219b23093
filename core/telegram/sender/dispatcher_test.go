package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcherRunsJob(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4})
	defer d.Close()

	var ran atomic.Bool
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitFor(t, ran.Load)
	if d.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %d", d.ErrorCount())
	}
}

func TestDispatcherNonRetryableFails(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4, MaxRetries: 3, RetryBackoff: time.Millisecond})
	defer d.Close()

	var calls atomic.Int32
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("bad request")
	})
	waitFor(t, func() bool { return d.ErrorCount() == 1 })
	if got := calls.Load(); got != 1 {
		t.Fatalf("non-retryable error retried %d times", got)
	}
}

func TestDispatcherHonorsFloodRetry(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4, MaxRetries: 2, RetryBackoff: time.Minute})
	defer d.Close()

	var calls atomic.Int32
	var ok atomic.Bool
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		if calls.Add(1) == 1 {
			// Zero retry-after keeps the test fast while still exercising
			// the flood branch instead of the minute-long backoff.
			return tele.FloodError{RetryAfter: 0}
		}
		ok.Store(true)
		return nil
	})
	waitFor(t, ok.Load)
	if d.ErrorCount() != 0 {
		t.Fatalf("flood retry should succeed, errors=%d", d.ErrorCount())
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestDispatcherFailureHook(t *testing.T) {
	var dropped atomic.Int32
	d := NewDispatcher(Options{
		Workers:      1,
		QueueSize:    4,
		RetryBackoff: time.Millisecond,
		OnFailure:    func() { dropped.Add(1) },
	})
	defer d.Close()

	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		return errors.New("bad request")
	})
	waitFor(t, func() bool { return dropped.Load() == 1 })
}

func TestDispatcherQueueClosed(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	d.Close()
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}
