package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ebreen/luffe/internal/services"
)

func newConsoleLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(&buf, levelVar)), &buf
}

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	logger.With(String(FieldComponent, "poller")).Info("reel queued", String(FieldReelID, "reel-1"))

	line := strings.TrimSuffix(buf.String(), "\n")
	if !strings.Contains(line, "INFO  [poller] reel queued") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.HasSuffix(line, "reel_id=reel-1") {
		t.Fatalf("expected trailing attr, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component must render as prefix only, got %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	logger.Info("status", String("detail", "not found"))

	if !strings.Contains(buf.String(), `detail="not found"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelWarn)

	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN  kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	logger.WithGroup("audd").Info("retry", Int("attempt", 2))

	if !strings.Contains(buf.String(), "audd.attempt=2") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestJSONHandlerKeyRemapping(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Error("boom", Error(errors.New("cause")))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["msg"] != "boom" {
		t.Fatalf("msg key missing: %v", decoded)
	}
	if decoded["level"] != "error" {
		t.Fatalf("level key missing or not lowered: %v", decoded)
	}
	if _, ok := decoded["ts"].(string); !ok {
		t.Fatalf("ts key missing: %v", decoded)
	}
	if decoded["error"] != "cause" {
		t.Fatalf("error attr missing: %v", decoded)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAttachesFields(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	ctx := services.WithReelID(context.Background(), "reel-1")
	ctx = services.WithRequestID(ctx, "corr-9")

	WithContext(ctx, logger).Info("processing")

	out := buf.String()
	if !strings.Contains(out, "reel_id=reel-1") || !strings.Contains(out, "correlation_id=corr-9") {
		t.Fatalf("context fields missing: %q", out)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger must report disabled")
	}
}
