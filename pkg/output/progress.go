package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"
)

const barTemplate = `{{ string . "label" }} {{ bar . "[" "█" "█" "░" "]" }} {{ percent . "%.0f%%" }}`

// BarProgress is a 0-100% progress bar drawn with pb
type BarProgress struct {
	mu       sync.Mutex
	writer   io.Writer
	label    string
	maxWidth int
	bar      *pb.ProgressBar
	percent  int
}

// NewBarProgress creates a hidden progress bar writing to w (stderr if nil)
func NewBarProgress(w io.Writer, label string) *BarProgress {
	if w == nil {
		w = os.Stderr
	}

	p := &BarProgress{
		writer:   w,
		label:    label,
		maxWidth: 80,
	}

	// Keep the bar on one line in narrow terminals
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 && width < p.maxWidth {
			p.maxWidth = width
		}
	}

	return p
}

// Show starts drawing the bar; a visible bar is left alone
func (p *BarProgress) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		return
	}

	bar := pb.ProgressBarTemplate(barTemplate).New(100)
	bar.SetWriter(p.writer)
	bar.SetMaxWidth(p.maxWidth)
	bar.Set("label", p.label)
	bar.SetCurrent(int64(p.percent))
	p.bar = bar.Start()
}

// SetPercent moves the fill; it is remembered while hidden
func (p *BarProgress) SetPercent(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.percent = int(clampPercent(float64(percent)))
	if p.bar != nil {
		p.bar.SetCurrent(int64(p.percent))
	}
}

// Percent returns the current fill
func (p *BarProgress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Visible reports whether the bar is drawn
func (p *BarProgress) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar != nil
}

// Hide stops drawing the bar
func (p *BarProgress) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	p.bar.Finish()
	p.bar = nil
}

// NullProgress tracks state without drawing; used in quiet and JSON modes
type NullProgress struct {
	mu      sync.Mutex
	visible bool
	percent int
}

// NewNullProgress creates a progress indicator that draws nothing
func NewNullProgress() *NullProgress {
	return &NullProgress{}
}

func (p *NullProgress) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
}

func (p *NullProgress) SetPercent(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percent = int(clampPercent(float64(percent)))
}

func (p *NullProgress) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Visible reports whether Show was called more recently than Hide
func (p *NullProgress) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Percent returns the last fill set
func (p *NullProgress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}
