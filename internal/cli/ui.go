package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleAccent  = lipgloss.NewStyle().Foreground(colorTeal)
	styleMuted   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarn    = lipgloss.NewStyle().Foreground(colorAmber)
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	markOK    = "✓"
	markFail  = "✗"
	markWarn  = "!"
	markNote  = "›"
	markArrow = "→"
	sep       = " · "
)

// printer writes human-readable status lines. Machine-readable output
// (graphs, paths) goes to the command's output stream directly.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer { return printer{w: w} }

func (p printer) line(mark lipgloss.Style, icon, msg string) {
	fmt.Fprintln(p.w, mark.Render(icon)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK, markOK, fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	p.line(styleFail, markFail, fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	p.line(styleWarn, markWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleNote, markNote, fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// file prints an indented path written by the command.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(markArrow)+" "+styleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// buildStats prints "N compiled · M precompiled · K cached" on one line.
// Zero precompiled units are omitted; zero cache hits print as "fresh".
func (p printer) buildStats(compiled, precompiled, cacheHits int) {
	parts := []string{styleMuted.Render(fmt.Sprintf("%d compiled", compiled))}
	if precompiled > 0 {
		parts = append(parts, styleMuted.Render(fmt.Sprintf("%d precompiled", precompiled)))
	}
	if cacheHits > 0 {
		parts = append(parts, styleOK.Render(fmt.Sprintf("%d cached", cacheHits)))
	} else {
		parts = append(parts, styleNote.Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, styleMuted.Render(sep)))
}

func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, styleMuted.Render(description+":")+" "+styleCommand.Render(cmd))
}

// block prints multi-line tool output, such as compiler diagnostics,
// set off by blank lines.
func (p printer) block(text string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, styleMuted.Render(strings.TrimRight(text, "\n")))
	fmt.Fprintln(p.w)
}
