package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"timeout", timeoutErr{}, true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"url timeout", &url.Error{Op: "Post", Err: timeoutErr{}}, true},
		{"flood", tele.FloodError{RetryAfter: 3}, true},
		{"context canceled", context.Canceled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldRetry(tc.err); got != tc.want {
				t.Fatalf("ShouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	if _, ok := RetryAfter(errors.New("boom")); ok {
		t.Fatal("expected no retry-after for plain error")
	}
	d, ok := RetryAfter(tele.FloodError{RetryAfter: 2})
	if !ok || d != 2*time.Second {
		t.Fatalf("RetryAfter = %v, %v", d, ok)
	}
	d, ok = RetryAfter(tele.FloodError{RetryAfter: -1})
	if !ok || d != 0 {
		t.Fatalf("negative retry-after should clamp to zero, got %v", d)
	}
}
