package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// FileLogger is a StreamLogger writing to a size-rotated file
type FileLogger struct {
	*StreamLogger
	config FileLoggerConfig
	file   *os.File
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, size, err := openAppend(config.Path)
	if err != nil {
		return nil, err
	}

	fl := &FileLogger{
		StreamLogger: NewStreamLogger(file, config.Format, config.Level),
		config:       config,
		file:         file,
	}
	fl.sink.written = size
	fl.sink.beforeWrite = fl.rotateIfNeeded
	fl.closer = closerFunc(fl.closeFile)

	return fl, nil
}

func openAppend(path string) (*os.File, int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat log file: %w", err)
	}

	return file, info.Size(), nil
}

func (l *FileLogger) closeFile() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotateIfNeeded shifts path -> path.1 -> path.2 ... once MaxSize is reached.
// Called with the sink lock held.
func (l *FileLogger) rotateIfNeeded(s *sink) {
	if l.config.MaxSize <= 0 || s.written < l.config.MaxSize || l.file == nil {
		return
	}

	l.file.Close()

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", l.config.Path, i), fmt.Sprintf("%s.%d", l.config.Path, i+1))
	}
	if l.config.MaxBackups > 0 {
		os.Rename(l.config.Path, l.config.Path+".1")
		os.Remove(fmt.Sprintf("%s.%d", l.config.Path, l.config.MaxBackups+1))
	} else {
		os.Remove(l.config.Path)
	}

	file, _, err := openAppend(l.config.Path)
	if err != nil {
		l.file = nil
		s.w = discard{}
		return
	}

	l.file = file
	s.w = file
	s.written = 0
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
