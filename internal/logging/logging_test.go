package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("scan done", "hits", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["msg"] != "scan done" || rec["hits"] != float64(3) {
		t.Fatalf("record=%v", rec)
	}
	if _, ok := rec["time"].(string); !ok {
		t.Fatalf("time missing: %v", rec)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info("quiet")
	log.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("output=%q", buf.String())
	}
}

func TestNew_RejectsUnknown(t *testing.T) {
	if _, err := New(Options{Level: "trace"}); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestFrom(t *testing.T) {
	fallback := Discard()
	if From(context.Background(), fallback) != fallback {
		t.Fatal("expected fallback")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if From(WithLogger(context.Background(), l), fallback) != l {
		t.Fatal("expected context logger")
	}
	if From(context.Background(), nil) == nil {
		t.Fatal("expected discard logger")
	}
}
