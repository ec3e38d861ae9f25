package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Core styles
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
)

// styleSymbols maps status names to the glyphs printed next to messages.
var styleSymbols = map[string]string{
	"pass":   "✓",
	"fail":   "✗",
	"warn":   "!",
	"info":   "ℹ",
	"arrow":  "→",
	"bullet": "•",
}

// Printer writes styled status lines to a terminal. A nil writer falls
// back to os.Stdout.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to w. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w}
}

// Successf prints a green success line with a check mark.
func (p *Printer) Successf(format string, a ...any) {
	fmt.Fprintln(p.out, successStyle.Render(styleSymbols["pass"]+" "+fmt.Sprintf(format, a...)))
}

// Errorf prints a red error line with a cross mark.
func (p *Printer) Errorf(format string, a ...any) {
	fmt.Fprintln(p.out, errorStyle.Render(styleSymbols["fail"]+" "+fmt.Sprintf(format, a...)))
}

// Warningf prints a yellow warning line.
func (p *Printer) Warningf(format string, a ...any) {
	fmt.Fprintln(p.out, warningStyle.Render(styleSymbols["warn"]+" "+fmt.Sprintf(format, a...)))
}

// Infof prints a cyan informational line.
func (p *Printer) Infof(format string, a ...any) {
	fmt.Fprintln(p.out, infoStyle.Render(styleSymbols["arrow"]+" "+fmt.Sprintf(format, a...)))
}

// Detailf prints a grey secondary line, indented under the previous message.
func (p *Printer) Detailf(format string, a ...any) {
	fmt.Fprintln(p.out, detailStyle.Render("  "+fmt.Sprintf(format, a...)))
}

// Headerf prints a bold section header.
func (p *Printer) Headerf(format string, a ...any) {
	fmt.Fprintln(p.out, headerStyle.Render(fmt.Sprintf(format, a...)))
}

// Indicator returns the styled status glyph for a source outcome.
func (p *Printer) Indicator(ok bool) string {
	if ok {
		return successStyle.Render(styleSymbols["pass"])
	}
	return errorStyle.Render(styleSymbols["fail"])
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
// Inputs can be long URLs or paths; the summary table stays readable.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
