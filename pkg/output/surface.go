package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/simnorris/pkg/models"
)

const (
	// ReportHeading tops every successful report
	ReportHeading = "📊 Analysis Results"
	// ErrorGlyph prefixes error lines
	ErrorGlyph = "❌"
)

// ProgressIndicator is the busy indicator shown while a request is in flight
type ProgressIndicator interface {
	// Show makes the indicator visible
	Show()

	// SetPercent sets the fill, clamped to 0-100
	SetPercent(p int)

	// Hide removes the indicator
	Hide()
}

// ResultsPanel is where an analysis outcome is rendered
type ResultsPanel interface {
	// Hide hides the panel, keeping its content
	Hide()

	// Visible reports whether the panel is shown
	Visible() bool

	// RenderError replaces the content with a single error line and shows the panel
	RenderError(msg string)

	// RenderReport replaces the content with the heading and one card per
	// comparison, in order, and shows the panel
	RenderReport(comparisons []models.ComparisonResult)
}

// Alerter shows a message the user must notice before anything else happens
type Alerter interface {
	Alert(msg string)
}

// NewPanel returns the panel for an output format: human, json or html
func NewPanel(format string, w io.Writer) (ResultsPanel, error) {
	switch format {
	case "json":
		return NewJSONPanel(w), nil
	case "html":
		return NewHTMLPanel(w), nil
	case "human", "":
		return NewTerminalPanel(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: human, json, html)", format)
	}
}

// SimilarityLine is the text shown under each card's bar
func SimilarityLine(m models.Metrics) string {
	return fmt.Sprintf("Similarity: %s%% | Verdict: %s", m.OverallText(), m.Verdict)
}

// ErrorLine is the text of an error panel
func ErrorLine(msg string) string {
	return ErrorGlyph + " " + msg
}

// clampPercent bounds a fill percentage to 0-100
func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// MultiPanel fans every call out to several panels
type MultiPanel struct {
	mu     sync.Mutex
	panels []ResultsPanel
}

// NewMultiPanel combines panels; nil entries are dropped
func NewMultiPanel(panels ...ResultsPanel) *MultiPanel {
	m := &MultiPanel{}
	for _, p := range panels {
		if p != nil {
			m.panels = append(m.panels, p)
		}
	}
	return m
}

func (m *MultiPanel) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		p.Hide()
	}
}

// Visible reports whether any panel is shown
func (m *MultiPanel) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.Visible() {
			return true
		}
	}
	return false
}

func (m *MultiPanel) RenderError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		p.RenderError(msg)
	}
}

func (m *MultiPanel) RenderReport(comparisons []models.ComparisonResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		p.RenderReport(comparisons)
	}
}
