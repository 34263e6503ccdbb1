package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// TerminalAlerter prints alerts on stderr, ringing the bell on a terminal
type TerminalAlerter struct {
	mu     sync.Mutex
	writer io.Writer
	bell   bool
}

// NewTerminalAlerter creates an alerter writing to w (stderr if nil)
func NewTerminalAlerter(w io.Writer) *TerminalAlerter {
	if w == nil {
		w = os.Stderr
	}
	a := &TerminalAlerter{writer: w}
	if file, ok := w.(*os.File); ok {
		a.bell = term.IsTerminal(int(file.Fd()))
	}
	return a
}

// Alert writes msg on its own line
func (a *TerminalAlerter) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bell {
		fmt.Fprint(a.writer, "\a")
		msg = color.New(color.Bold, color.FgHiYellow).Sprint(msg)
	}
	fmt.Fprintln(a.writer, msg)
}
