package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "relay")
	LogEvent(ctx, log, slog.LevelInfo, "request.created",
		slog.String("status", "ok"),
		slog.Int64("request_id", 5),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=relay", "event=request.created", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "request_id=5") {
		t.Fatalf("expected request_id attr in %s", line)
	}
}

func TestStructuredHandlerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "11:22:33")

	log := slog.New(handler).With("component", "db")
	LogEvent(ctx, log, slog.LevelError, "query.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	for _, want := range []string{`"component":"db"`, `"event":"query.failed"`, `"err":"boom"`, `"rid_full":"11:22:33"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %s in %s", want, line)
		}
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("100:200:300"); got != "2s.5k.8c" {
		t.Fatalf("CompactRID = %s", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID passthrough = %s", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hi\x00there\x1b[0m"
	got := SanitizeLimit(in, 5)
	if got != "hithe" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
