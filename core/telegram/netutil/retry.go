package netutil

import (
	"errors"
	"net"
	"net/url"
	"time"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether an outbound Telegram call failed with a
// transient error worth retrying: dial/timeout failures from net/http, or
// API-side flood control.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := RetryAfter(err); ok {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || netErr.Temporary() {
			return true
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if nested, ok := opErr.Err.(net.Error); ok {
			if nested.Timeout() || nested.Temporary() {
				return true
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}

	return false
}

// RetryAfter extracts the server-mandated pause from a Telegram flood error.
// The returned duration is how long the caller must wait before retrying.
func RetryAfter(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		ra := floodErr.RetryAfter
		if ra < 0 {
			ra = 0
		}
		return time.Duration(ra) * time.Second, true
	}
	return 0, false
}
