package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sdejongh/simnorris/pkg/models"
)

// JSONPanel writes each rendered outcome as one JSON document, for
// automation and scripting
type JSONPanel struct {
	mu      sync.Mutex
	writer  io.Writer
	visible bool
	err     error
}

// JSONComparison is one card in JSON form
type JSONComparison struct {
	Files   [2]string `json:"files"`
	Overall float64   `json:"overall"`
	Verdict string    `json:"verdict"`
	Color   string    `json:"color"`
	Line    string    `json:"line"`
}

// JSONOutcome is the document written per render
type JSONOutcome struct {
	Error       string           `json:"error,omitempty"`
	Heading     string           `json:"heading,omitempty"`
	Comparisons []JSONComparison `json:"comparisons,omitempty"`
}

// NewJSONPanel creates a JSON panel writing to w
func NewJSONPanel(w io.Writer) *JSONPanel {
	if w == nil {
		w = os.Stdout
	}
	return &JSONPanel{writer: w}
}

func (p *JSONPanel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

func (p *JSONPanel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *JSONPanel) RenderError(msg string) {
	p.write(JSONOutcome{Error: msg})
}

func (p *JSONPanel) RenderReport(comparisons []models.ComparisonResult) {
	out := JSONOutcome{
		Heading:     ReportHeading,
		Comparisons: make([]JSONComparison, 0, len(comparisons)),
	}
	for _, cmp := range comparisons {
		out.Comparisons = append(out.Comparisons, JSONComparison{
			Files:   cmp.Files,
			Overall: cmp.Metrics.Overall,
			Verdict: cmp.Metrics.Verdict,
			Color:   cmp.Metrics.Color().String(),
			Line:    SimilarityLine(cmp.Metrics),
		})
	}
	p.write(out)
}

func (p *JSONPanel) write(out JSONOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.visible = true
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil && p.err == nil {
		p.err = fmt.Errorf("failed to write JSON output: %w", err)
	}
}

// Flush returns the first error hit while writing outcomes
func (p *JSONPanel) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
