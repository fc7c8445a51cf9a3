package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// Feedback creates a markdown summary of a judgment.
//
//	# Sentence <id>
//	**Source:** ...
//	**Machine translation:** ...
//	| Fluency | Adequacy | Overall |
//	## Errors (<count>)
//	- `MA_SE` "text" [start-end): comment
//	## Final form
//	## Comments
func Feedback(s annotation.Sentence, r *annotation.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sentence %d\n\n", s.ID)
	if s.SourceLanguage != "" || s.TargetLanguage != "" {
		fmt.Fprintf(&b, "_%s → %s_", s.SourceLanguage, s.TargetLanguage)
		if s.Domain != "" {
			fmt.Fprintf(&b, " · %s", s.Domain)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "**Source:** %s\n\n", s.SourceText)
	fmt.Fprintf(&b, "**Machine translation:** %s\n\n", Bracketed(Render(s.MachineTranslation, r.Spans)))
	if s.ReferenceTranslation != "" {
		fmt.Fprintf(&b, "**Reference:** %s\n\n", s.ReferenceTranslation)
	}

	b.WriteString("| Fluency | Adequacy | Overall |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n\n", scoreCell(r.Scores.Fluency), scoreCell(r.Scores.Adequacy), scoreCell(r.Scores.Overall))

	spans := slices.Clone(r.Spans)
	slices.SortStableFunc(spans, func(a, b annotation.Span) int { return a.Start - b.Start })

	fmt.Fprintf(&b, "## Errors (%d)\n\n", len(spans))
	if len(spans) == 0 {
		b.WriteString("No errors marked.\n\n")
	}
	for _, sp := range spans {
		fmt.Fprintf(&b, "- `%s` %q [%d-%d): %s\n", sp.ErrorType.Code(), sp.Text, sp.Start, sp.End, sp.Comment)
	}
	if len(spans) > 0 {
		b.WriteString("\n")
	}

	if strings.TrimSpace(r.FinalForm) != "" {
		fmt.Fprintf(&b, "## Final form\n\n%s\n\n", r.FinalForm)
	}
	if strings.TrimSpace(r.Comments) != "" {
		fmt.Fprintf(&b, "## Comments\n\n%s\n", r.Comments)
	}

	return b.String()
}

func scoreCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d/5", *v)
}

// Markdown renders markdown for the terminal with the named glamour
// style, wrapping at width. An empty theme means "dark".
func Markdown(md, theme string, width int) (string, error) {
	if theme == "" {
		theme = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
