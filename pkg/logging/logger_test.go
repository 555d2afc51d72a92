package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"Error", ErrorLevel},
		{"invalid", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	t.Run("Duration", func(t *testing.T) {
		f := Duration("timeout", 300*time.Millisecond)
		if f.Key != "timeout" || f.Value != "300ms" {
			t.Errorf("Duration() = %+v", f)
		}
	})

	t.Run("Error", func(t *testing.T) {
		f := Error(errors.New("frame too short"))
		if f.Key != "error" || f.Value != "frame too short" {
			t.Errorf("Error() = %+v", f)
		}
	})

	t.Run("Error_nil", func(t *testing.T) {
		f := Error(nil)
		if f.Key != "error" || f.Value != nil {
			t.Errorf("Error(nil) = %+v", f)
		}
	})

	t.Run("Domain", func(t *testing.T) {
		if f := Layer(2); f.Key != "layer" || f.Value != 2 {
			t.Errorf("Layer() = %+v", f)
		}
		if f := NodeIndex(3); f.Key != "node_index" || f.Value != 3 {
			t.Errorf("NodeIndex() = %+v", f)
		}
		if f := Epoch(7); f.Key != "epoch" || f.Value != 7 {
			t.Errorf("Epoch() = %+v", f)
		}
		if f := Transport("redis"); f.Key != "transport" || f.Value != "redis" {
			t.Errorf("Transport() = %+v", f)
		}
	})
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("record applied", Epoch(4), Component("engine"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "record applied" {
		t.Errorf("Message = %v, want 'record applied'", entry.Message)
	}
	if entry.Fields["epoch"] != float64(4) {
		t.Errorf("Fields[epoch] = %v, want 4", entry.Fields["epoch"])
	}
	if entry.Fields["component"] != "engine" {
		t.Errorf("Fields[component] = %v, want engine", entry.Fields["component"])
	}
	if entry.Time == "" {
		t.Error("Time field is empty")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}

	for i, want := range []string{"WARN", "ERROR"} {
		var entry LogEntry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("Failed to unmarshal entry %d: %v", i, err)
		}
		if entry.Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entry.Level, want)
		}
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("scheduler"), RunID("abc"))
	child.Info("run dropped", String("reason", "stopped"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if entry.Fields["component"] != "scheduler" {
		t.Errorf("component field = %v, want scheduler", entry.Fields["component"])
	}
	if entry.Fields["run_id"] != "abc" {
		t.Errorf("run_id field = %v, want abc", entry.Fields["run_id"])
	}
	if entry.Fields["reason"] != "stopped" {
		t.Errorf("reason field = %v, want stopped", entry.Fields["reason"])
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestJSONLogger_ChildFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewJSONLogger(&buf, InfoLevel)
	child := root.With(Component("engine"))

	child.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug written at info level")
	}

	root.SetLevel(DebugLevel)
	child.Debug("frame", Count(3))
	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("child ignored level change: %q", buf.String())
	}

	buf.Reset()
	child.SetLevel(ErrorLevel)
	root.Warn("suppressed")
	if buf.Len() != 0 {
		t.Errorf("root ignored level set through child: %q", buf.String())
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "netviz.log")

	logger, closer, err := NewFileLogger(path, InfoLevel)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("tui started")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"msg":"tui started"`) {
		t.Errorf("log file content = %q", data)
	}
}

func TestDefaultLoggerOverride(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))
	defer SetDefaultLogger(nil)

	OrDefault(nil).Debug("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not used, got %q", buf.String())
	}

	var own bytes.Buffer
	OrDefault(NewJSONLogger(&own, DebugLevel)).Debug("own")
	if strings.Contains(buf.String(), "own") {
		t.Error("OrDefault should prefer the supplied logger")
	}
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", Layer(1), NodeIndex(i))
	}
}
