package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/sdejongh/simnorris/pkg/models"
)

const (
	defaultBarCells = 40
	maxBarCells     = 60
)

// TerminalPanel renders results as colored text. Hiding a terminal panel
// cannot erase what was printed; it only resets the visibility state.
type TerminalPanel struct {
	mu       sync.Mutex
	writer   io.Writer
	barCells int
	colorize bool
	visible  bool
}

// NewTerminalPanel creates a panel writing to w. When w is a terminal the
// bar is sized to it and colors are enabled.
func NewTerminalPanel(w io.Writer) *TerminalPanel {
	if w == nil {
		w = os.Stdout
	}

	p := &TerminalPanel{
		writer:   w,
		barCells: defaultBarCells,
	}

	if file, ok := w.(*os.File); ok {
		fd := int(file.Fd())
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			p.barCells = min(max(width-20, 10), maxBarCells)
		}
		p.colorize = term.IsTerminal(fd)
	}

	return p
}

// SetColor forces colors on or off
func (p *TerminalPanel) SetColor(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colorize = enabled
}

func (p *TerminalPanel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

func (p *TerminalPanel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// RenderError prints the error line in red
func (p *TerminalPanel) RenderError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.visible = true
	fmt.Fprintln(p.writer, p.paint(color.FgRed, ErrorLine(msg)))
}

// RenderReport prints the heading and one card per comparison
func (p *TerminalPanel) RenderReport(comparisons []models.ComparisonResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.visible = true
	fmt.Fprintf(p.writer, "%s\n", ReportHeading)

	for _, cmp := range comparisons {
		attr := attrFor(cmp.Metrics.Color())

		fmt.Fprintf(p.writer, "\n%s ↔ %s\n", cmp.Files[0], cmp.Files[1])
		fmt.Fprintf(p.writer, "%s\n", p.paint(attr, p.bar(cmp.Metrics.Overall)))
		fmt.Fprintf(p.writer, "Similarity: %s%% | Verdict: %s\n",
			cmp.Metrics.OverallText(), p.paint(attr, cmp.Metrics.Verdict))
	}
}

// bar draws a fixed-width block bar filled to overall percent
func (p *TerminalPanel) bar(overall float64) string {
	filled := int(math.Round(clampPercent(overall) / 100 * float64(p.barCells)))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", p.barCells-filled) + "]"
}

func (p *TerminalPanel) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if !p.colorize {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

// attrFor maps a verdict color to the closest terminal color
func attrFor(c models.Color) color.Attribute {
	switch c {
	case models.ColorAlert:
		return color.FgHiRed
	case models.ColorWarning:
		return color.FgHiYellow
	case models.ColorSuccess:
		return color.FgHiGreen
	default:
		return color.FgHiWhite
	}
}
