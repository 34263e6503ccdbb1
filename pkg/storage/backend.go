package storage

import (
	"context"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	RelativePath string // slash-separated, relative to the backend root
}

// Backend is the read-only view of a folder the user picked for upload
type Backend interface {
	// Root returns the absolute root path
	Root() string

	// List returns all entries under path recursively, in lexical order
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Close releases any resources held by the backend
	Close() error
}
