package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   logPath,
		Format: FormatText,
		Level:  InfoLevel,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestStreamLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(&buf, FormatText, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", nil, nil)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("missing warn line:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("missing error line:\n%s", out)
	}
}

func TestStreamLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(&buf, FormatText, DebugLevel)

	logger.Error(context.Background(), "upload failed", errors.New("connection refused"), Fields{
		"files": 3,
		"bytes": 1024,
	})

	line := buf.String()
	if !strings.Contains(line, `error="connection refused"`) {
		t.Errorf("missing error field: %s", line)
	}
	// fields are sorted
	if !strings.Contains(line, "bytes=1024 files=3") {
		t.Errorf("fields not sorted: %s", line)
	}
}

func TestStreamLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(&buf, FormatJSON, DebugLevel)

	logger.Info(context.Background(), "analysis complete", Fields{"comparisons": 2})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["message"] != "analysis complete" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["comparisons"] != float64(2) {
		t.Errorf("comparisons = %v, want 2", entry["comparisons"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestStreamLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewStreamLogger(&buf, FormatText, InfoLevel)

	child := base.WithFields(Fields{"operation_id": "op-1"})
	child.Info(context.Background(), "started", Fields{"files": 1})
	base.Info(context.Background(), "plain", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "operation_id=op-1") || !strings.Contains(lines[0], "files=1") {
		t.Errorf("child line missing fields: %s", lines[0])
	}
	if strings.Contains(lines[1], "operation_id") {
		t.Errorf("base logger should not inherit child fields: %s", lines[1])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      DebugLevel,
		MaxSize:    200,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	for i := 0; i < 50; i++ {
		logger.Info(context.Background(), "a line long enough to force rotation quickly", Fields{"i": i})
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected backup %s.1: %v", logPath, err)
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Errorf("backup beyond MaxBackups should not exist")
	}
}

func TestFileLogger_WithFieldsSharesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shared.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.WithFields(Fields{"k": "v"}).Info(context.Background(), "from child", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "from child k=v") {
		t.Errorf("log file content = %q", data)
	}
}

func TestStreamLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(&buf, FormatJSON, InfoLevel)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			child := logger.WithFields(Fields{"goroutine": g})
			for i := 0; i < 25; i++ {
				child.Info(context.Background(), "tick", Fields{"i": i})
			}
		}(g)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 200 {
		t.Fatalf("expected 200 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("interleaved write produced invalid JSON: %s", line)
		}
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "x", nil)
	logger.Info(ctx, "x", nil)
	logger.Warn(ctx, "x", nil)
	logger.Error(ctx, "x", errors.New("boom"), nil)

	if logger.WithFields(Fields{"a": 1}) != logger {
		t.Error("WithFields should return the same null logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be json")
	}
	if ParseFormat("xml") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
}

func TestStreamLogger_UnknownLevel(t *testing.T) {
	if got := levelString(Level(42)); got != "UNKNOWN" {
		t.Errorf("levelString(42) = %s, want UNKNOWN", got)
	}
}
