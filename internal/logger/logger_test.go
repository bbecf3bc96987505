package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:       slog.LevelDebug,
		Format:      TEXT,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"test": true},
	})

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "test=true") {
		t.Errorf("Expected default tag in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.With("component", "dispatcher").Warn("This is a warning")
	if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "component=dispatcher") {
		t.Errorf("Expected warning with component in log output, got: %s", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: slog.LevelInfo, Format: JSON, Output: &buf})

	logger.Info("JSON message", "tool", "reminders_list")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "JSON message" || entry["level"] != "INFO" || entry["tool"] != "reminders_list" {
		t.Errorf("Unexpected JSON log entry: %v", entry)
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: slog.LevelInfo, Format: TEXT, Output: &buf})

	logger.Debug("Should not appear")
	if buf.Len() > 0 {
		t.Errorf("DEBUG message should not have been logged, got: %s", buf.String())
	}

	logger.Info("Should appear")
	if buf.Len() == 0 {
		t.Errorf("INFO message should have been logged")
	}

	buf.Reset()
	disabled := New(&Config{Level: DISABLED, Output: &buf})
	disabled.Error("Should not appear either")
	if buf.Len() > 0 {
		t.Errorf("Disabled logger wrote output: %s", buf.String())
	}
}

func TestParse(t *testing.T) {
	levels := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"off":     DISABLED,
		"unknown": slog.LevelInfo,
	}
	for in, want := range levels {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if ParseFormat("JSON") != JSON || ParseFormat("text") != TEXT || ParseFormat("") != TEXT {
		t.Errorf("ParseFormat returned unexpected values")
	}
}

func ExampleFromStrings() {
	var buf bytes.Buffer
	log := FromStrings("debug", "text", &buf)

	log.Debug("remindctl finished", "args", []string{"complete", "42"})

	fmt.Println("Contains args:", strings.Contains(buf.String(), "args=\"[complete 42]\""))
	// Output: Contains args: true
}
