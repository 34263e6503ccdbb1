package selection

import (
	"path"
	"strings"
)

// Matcher decides which folder entries are left out of an upload.
// Patterns support:
//   - basename globs: *.o, *.tmp
//   - directory patterns: .git/, node_modules/
//   - path globs: build/*
//   - any-depth patterns: **/testdata/*
type Matcher struct {
	patterns []string
}

// NewMatcher builds a matcher, dropping empty patterns
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, strings.ReplaceAll(p, "\\", "/"))
	}
	return m
}

// Empty reports whether the matcher has no patterns
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Match reports whether a slash-separated relative path is excluded
func (m *Matcher) Match(relPath string) bool {
	if m.Empty() {
		return false
	}

	baseName := path.Base(relPath)

	for _, pattern := range m.patterns {
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if relPath == dir ||
				strings.HasPrefix(relPath, dir+"/") ||
				strings.Contains(relPath, "/"+dir+"/") ||
				strings.HasSuffix(relPath, "/"+dir) {
				return true
			}
			continue
		}

		if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
			if globMatch(suffix, baseName) || anySuffixMatches(relPath, suffix) {
				return true
			}
			continue
		}

		if strings.Contains(pattern, "/") {
			if anySuffixMatches(relPath, pattern) {
				return true
			}
			continue
		}

		if globMatch(pattern, baseName) {
			return true
		}
	}

	return false
}

func globMatch(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}

// anySuffixMatches tries the pattern against every trailing run of path segments
func anySuffixMatches(relPath, pattern string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if globMatch(pattern, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}
