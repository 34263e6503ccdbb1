package models

import "strings"

// Color is a CSS hex color used to paint a verdict
type Color string

const (
	// ColorNeutral is used when no verdict was supplied
	ColorNeutral Color = "#fff"
	// ColorAlert marks high similarity
	ColorAlert Color = "#e74c3c"
	// ColorWarning marks medium similarity
	ColorWarning Color = "#f1c40f"
	// ColorSuccess is every other verdict
	ColorSuccess Color = "#2ecc71"
)

// ClassifyVerdict maps a verdict label to its display color.
// Matching is a case-insensitive substring test; "high" is checked before
// "medium", and any other non-empty label is a success.
func ClassifyVerdict(label string) Color {
	if label == "" {
		return ColorNeutral
	}
	lower := strings.ToLower(label)
	if strings.Contains(lower, "high") {
		return ColorAlert
	}
	if strings.Contains(lower, "medium") {
		return ColorWarning
	}
	return ColorSuccess
}

// String returns the hex value
func (c Color) String() string {
	return string(c)
}
