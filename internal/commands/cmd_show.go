package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/render"
	"github.com/colonyops/mtqa/internal/mtqa"
)

type ShowCmd struct {
	flags *Flags
	app   *mtqa.App

	plain bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *mtqa.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show a sentence with its marked errors",
		UsageText: "mtqa show [--plain] <id>",
		Description: `Prints the source sentence and the machine translation with every persisted
error highlighted by type. Non-terminal output uses [text]{CODE} markers.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "use bracket markers even on a terminal",
				Destination: &cmd.plain,
			},
		},
		ShellComplete: SentenceIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := sentenceIDArg(c, 0)
	if err != nil {
		return err
	}

	sentence, rec, err := cmd.app.Report(ctx, id)
	if err != nil {
		return err
	}

	var spans []annotation.Span
	if rec != nil {
		spans = rec.Spans
	}

	color := !cmd.plain && isTerminal(c.Root().Writer)
	writeHighlighted(c.Root().Writer, sentence, spans, color)
	return nil
}

// writeHighlighted prints a sentence with spans, coloured or bracketed.
func writeHighlighted(w io.Writer, s annotation.Sentence, spans []annotation.Span, color bool) {
	segments := render.Render(s.MachineTranslation, spans)

	_, _ = fmt.Fprintf(w, "#%d  %s → %s\n\n", s.ID, s.SourceLanguage, s.TargetLanguage)
	_, _ = fmt.Fprintf(w, "Source: %s\n", s.SourceText)

	styles := render.DefaultStyles()
	if color {
		_, _ = fmt.Fprintf(w, "MT:     %s\n", render.ANSI(segments, styles))
	} else {
		_, _ = fmt.Fprintf(w, "MT:     %s\n", render.Bracketed(segments))
	}

	if len(spans) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for _, note := range render.Notes(segments) {
		_, _ = fmt.Fprintf(w, "  %s\n", note)
	}
	if color {
		_, _ = fmt.Fprintf(w, "\n%s\n", render.Legend(styles))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
