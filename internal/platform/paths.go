package platform

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath cleans a path for the current platform
func NormalizePath(p string) string {
	normalized := filepath.Clean(p)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(p, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(p string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(p, "\\\\") || strings.HasPrefix(p, "//")
}

// FileName is the part name for an individually chosen file: its base name
func FileName(p string) string {
	return filepath.Base(NormalizePath(p))
}

// FolderPartName is the part name for a file found in a chosen folder: the
// folder's base name followed by the slash-separated relative path, which is
// what browsers send for directory uploads.
func FolderPartName(folder, relPath string) string {
	base := filepath.Base(NormalizePath(folder))
	rel := filepath.ToSlash(relPath)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return path.Clean(rel)
	}
	return path.Join(base, rel)
}

// HasExt reports whether p ends with ext, ignoring case
func HasExt(p, ext string) bool {
	return strings.EqualFold(filepath.Ext(p), ext)
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(p string) error {
	if p == "" {
		return &PathError{Path: p, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(p, char) && !IsUNCPath(p) {
				return &PathError{Path: p, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
