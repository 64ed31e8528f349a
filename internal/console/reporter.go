// Package console provides user-facing run output. Components receive a
// Reporter instead of printing directly, so tests can capture output without
// coupling to a process-wide printer.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Reporter renders user-facing progress for a run. Implementations must be
// safe for use from the progress ticker goroutine.
type Reporter interface {
	// Phase renders a phase banner, e.g. "Phase 1: Planning".
	Phase(title string)
	// Info renders an informational status line.
	Info(format string, args ...any)
	// Warn renders a warning line.
	Warn(format string, args ...any)
	// Error renders an error line.
	Error(format string, args ...any)
	// Success renders a success line.
	Success(format string, args ...any)
	// Tick renders a transient progress indication while a backend call
	// blocks. Advisory only.
	Tick(msg string)
}

var (
	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Foreground(lipgloss.Color("42"))

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	tickStyle    = lipgloss.NewStyle().Faint(true)
)

// Writer is a Reporter that renders styled lines to an io.Writer.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Reporter writing to out. Pass os.Stdout for normal runs.
func NewWriter(out io.Writer) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{out: out}
}

func (w *Writer) Phase(title string) {
	fmt.Fprintln(w.out, phaseStyle.Render(title))
}

func (w *Writer) Info(format string, args ...any) {
	fmt.Fprintln(w.out, infoStyle.Render(fmt.Sprintf(format, args...)))
}

func (w *Writer) Warn(format string, args ...any) {
	fmt.Fprintln(w.out, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func (w *Writer) Error(format string, args ...any) {
	fmt.Fprintln(w.out, errorStyle.Render(fmt.Sprintf(format, args...)))
}

func (w *Writer) Success(format string, args ...any) {
	fmt.Fprintln(w.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (w *Writer) Tick(msg string) {
	fmt.Fprintln(w.out, tickStyle.Render(msg))
}

// Nop is a Reporter that discards all output. Useful for tests.
type Nop struct{}

func (Nop) Phase(string)           {}
func (Nop) Info(string, ...any)    {}
func (Nop) Warn(string, ...any)    {}
func (Nop) Error(string, ...any)   {}
func (Nop) Success(string, ...any) {}
func (Nop) Tick(string)            {}

// Capture is a Reporter that records rendered lines for assertions in tests.
type Capture struct {
	Lines []string
}

func (c *Capture) record(kind, msg string) {
	c.Lines = append(c.Lines, kind+": "+msg)
}

func (c *Capture) Phase(title string)               { c.record("phase", title) }
func (c *Capture) Info(format string, args ...any)  { c.record("info", fmt.Sprintf(format, args...)) }
func (c *Capture) Warn(format string, args ...any)  { c.record("warn", fmt.Sprintf(format, args...)) }
func (c *Capture) Error(format string, args ...any) { c.record("error", fmt.Sprintf(format, args...)) }
func (c *Capture) Success(format string, args ...any) {
	c.record("success", fmt.Sprintf(format, args...))
}
func (c *Capture) Tick(msg string) { c.record("tick", msg) }

// Contains reports whether any recorded line contains substr.
func (c *Capture) Contains(substr string) bool {
	for _, l := range c.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
