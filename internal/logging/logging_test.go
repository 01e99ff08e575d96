package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = "warn"
	opts.ReportTimestamp = false

	logger, err := New(&buf, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Fatalf("warn line missing fields: %q", out)
	}
	if !strings.Contains(out, "todoapp") {
		t.Fatalf("prefix missing: %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.Level = "loud"
	if _, err := New(&bytes.Buffer{}, opts); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "todoapp.log")
	for _, msg := range []string{"first", "second"} {
		logger, closer, err := OpenFile(path, DefaultOptions())
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		logger.Info(msg)
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Fatalf("log file missing lines: %q", data)
	}
}
