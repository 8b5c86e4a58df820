package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "warn")

	log.LogDebug("too quiet")
	log.LogInfo("also too quiet")
	log.LogWarn("heard")
	log.LogError("also heard")

	out := buf.String()
	if strings.Contains(out, "too quiet") {
		t.Errorf("messages below the level should be dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] heard") || !strings.Contains(out, "[ERROR] also heard") {
		t.Errorf("messages at or above the level should be written, got:\n%s", out)
	}
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "chatty")

	log.LogDebug("debug line")
	log.LogInfo("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Error("unknown level should default to info, filtering debug")
	}
	if !strings.Contains(out, "info line") {
		t.Error("info should pass at the default level")
	}
}

func TestMessageFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "info")

	log.LogInfo("iteration 1: 2 done, 3 remaining")

	out := buf.String()
	// [HH:MM:SS] [INFO] message
	if !strings.Contains(out, "] [INFO] iteration 1: 2 done, 3 remaining\n") {
		t.Errorf("unexpected format: %q", out)
	}
	if !strings.HasPrefix(out, "[") || len(out) < len("[15:04:05] ") {
		t.Errorf("missing timestamp prefix: %q", out)
	}
}

func TestNoColorForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "info")

	log.LogWarn("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("color escapes should not be written to a non-TTY writer")
	}
}

func TestNilWriterDiscards(t *testing.T) {
	log := NewConsoleLogger(nil, "debug")
	// Must not panic.
	log.LogInfo("dropped")
	log.LogError("dropped")
}
