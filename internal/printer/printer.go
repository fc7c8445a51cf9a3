// Package printer writes human-facing command output with lipgloss styling.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Printer writes status lines to a writer.
type Printer struct {
	w io.Writer
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

type ctxKey struct{}

// NewContext returns ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(prefix string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if prefix == "" {
		_, _ = fmt.Fprintln(p.w, msg)
		return
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", prefix, msg)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line("", format, args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(successStyle.Render("✔"), format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(infoStyle.Render("•"), format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(warnStyle.Render("!"), format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(errorStyle.Render("✘"), format, args...)
}

// Section writes a heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.w, sectionStyle.Render(title))
}

// WarnItem writes an indented warning detail.
func (p *Printer) WarnItem(label, detail string) {
	_, _ = fmt.Fprintf(p.w, "  %s %s\n", warnStyle.Render(label), mutedStyle.Render(detail))
}
