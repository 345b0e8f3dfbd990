package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	// Test development mode
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize development logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Test production mode
	err = Init()
	if err != nil {
		t.Fatalf("failed to initialize production logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

// Basic logging test (slog-backed; no Sugar)
func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerJSONFormat(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	var buf bytes.Buffer
	l, err := New(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("failed to create json logger: %v", err)
	}

	l.Info(context.Background(), "prediction served", Int("idx", 5), Int64("ts", 1700000000), Duration("took", 3*time.Millisecond))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if line["msg"] != "prediction served" {
		t.Errorf("unexpected msg: %v", line["msg"])
	}
	if line["idx"] != float64(5) {
		t.Errorf("unexpected idx: %v", line["idx"])
	}
	if _, ok := line["source"]; !ok {
		t.Error("source field missing")
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	var buf bytes.Buffer
	l, err := New(&buf, FormatText)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}

	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("level not applied: %q", out)
	}
}

func TestSetFormatString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetFormatString(FormatText) }()

	if err := SetFormatString("JSON"); err != nil {
		t.Fatalf("json format rejected: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after format change")
	}
	if err := SetFormatString("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
