package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// sink serialises writes from every logger derived with WithFields
type sink struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	level  Level

	// written counts bytes since the sink was (re)opened
	written int64

	// beforeWrite runs with mu held, used by the file logger to rotate
	beforeWrite func(s *sink)
}

// StreamLogger writes log entries to an io.Writer
type StreamLogger struct {
	sink   *sink
	fields Fields
	closer io.Closer
}

// NewStreamLogger creates a logger writing to w
func NewStreamLogger(w io.Writer, format Format, level Level) *StreamLogger {
	return &StreamLogger{
		sink: &sink{w: w, format: format, level: level},
	}
}

// Debug logs a debug message
func (l *StreamLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *StreamLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *StreamLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *StreamLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields sharing the same output
func (l *StreamLogger) WithFields(fields Fields) Logger {
	return &StreamLogger{
		sink:   l.sink,
		fields: mergeFields(l.fields, fields),
	}
}

// Close closes the underlying writer when the logger owns it
func (l *StreamLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.closer.Close()
}

func (l *StreamLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.sink.level {
		return
	}

	all := mergeFields(l.fields, fields)

	var line []byte
	var fmtErr error
	if l.sink.format == FormatJSON {
		line, fmtErr = formatJSON(level, msg, err, all)
	} else {
		line = formatText(level, msg, err, all)
	}
	if fmtErr != nil {
		return
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.beforeWrite != nil {
		l.sink.beforeWrite(l.sink)
	}
	n, _ := l.sink.w.Write(line)
	l.sink.written += int64(n)
}

// formatJSON formats a log entry as one JSON object per line
func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     levelString(level),
		"message":   msg,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}

	return append(data, '\n'), nil
}

// formatText formats a log entry as a single text line with sorted fields
func formatText(level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, " [%s] %s", levelString(level), msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}
