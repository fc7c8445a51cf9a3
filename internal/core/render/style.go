package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// Styles holds one lipgloss style per error type.
type Styles struct {
	MinorSyntactic lipgloss.Style
	MinorSemantic  lipgloss.Style
	MajorSyntactic lipgloss.Style
	MajorSemantic  lipgloss.Style
	Plain          lipgloss.Style
}

// DefaultStyles mirrors the web colour coding: orange and blue for minor
// errors, red and purple for major ones.
func DefaultStyles() Styles {
	mark := func(fg, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bg)).
			Underline(true)
	}

	return Styles{
		MinorSyntactic: mark("#9a3412", "#ffedd5"),
		MinorSemantic:  mark("#1e40af", "#dbeafe"),
		MajorSyntactic: mark("#991b1b", "#fee2e2"),
		MajorSemantic:  mark("#6b21a8", "#f3e8ff"),
		Plain:          lipgloss.NewStyle(),
	}
}

// For returns the style for an error type.
func (s Styles) For(t annotation.ErrorType) lipgloss.Style {
	switch t {
	case annotation.MinorSyntactic:
		return s.MinorSyntactic
	case annotation.MinorSemantic:
		return s.MinorSemantic
	case annotation.MajorSyntactic:
		return s.MajorSyntactic
	case annotation.MajorSemantic:
		return s.MajorSemantic
	}
	return s.Plain
}

// ANSI renders segments with terminal styling.
func ANSI(segments []Segment, styles Styles) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case Plain:
			b.WriteString(styles.Plain.Render(seg.Text))
		case Highlighted:
			b.WriteString(styles.For(seg.Span.ErrorType).Render(seg.Text))
		}
	}
	return b.String()
}

// Bracketed renders segments without colour, wrapping highlights as
// "[text]{MI_SE}".
func Bracketed(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case Plain:
			b.WriteString(seg.Text)
		case Highlighted:
			fmt.Fprintf(&b, "[%s]{%s}", seg.Text, seg.Span.ErrorType.Code())
		}
	}
	return b.String()
}

// Legend renders one styled sample per error type.
func Legend(styles Styles) string {
	parts := make([]string, 0, len(annotation.ErrorTypes()))
	for _, t := range annotation.ErrorTypes() {
		parts = append(parts, styles.For(t).Render(t.Code())+" "+t.Label())
	}
	return strings.Join(parts, "  ")
}

// Notes lists the comment of every highlighted segment in display order.
func Notes(segments []Segment) []string {
	var notes []string
	for _, seg := range segments {
		if seg.Kind != Highlighted {
			continue
		}
		notes = append(notes, fmt.Sprintf("%q %s: %s", seg.Text, seg.Span.ErrorType.Label(), seg.Span.Comment))
	}
	return notes
}
