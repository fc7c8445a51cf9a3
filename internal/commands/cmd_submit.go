package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/internal/printer"
	"github.com/colonyops/mtqa/pkg/iojson"
)

type SubmitCmd struct {
	flags *Flags
	app   *mtqa.App

	// flags
	reader     iojson.FileReader[mtqa.DraftFile]
	yes        bool
	jsonOutput bool
}

// NewSubmitCmd creates a new submit command
func NewSubmitCmd(flags *Flags, app *mtqa.App) *SubmitCmd {
	return &SubmitCmd{flags: flags, app: app}
}

// Register adds the submit command to the application
func (cmd *SubmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "submit",
		Usage:     "Submit annotations from a draft file",
		UsageText: "mtqa submit [-f drafts.json] [--yes] [--json]",
		Description: `Applies each draft (scores, final form, comments, voice note and marks) to
its sentence and submits it.

Marks locate their text by "selection" (first occurrence in the machine
translation, tolerant of repeated whitespace) or by an explicit rune range
"start"/"end". Drafts with blocking errors are reported and skipped.
Drafts that only have warnings are submitted with --yes and left as
drafts otherwise.

Example:
  {"drafts": [{"sentence_id": 7, "scores": {"overall": 3},
    "final_form": "The cat sat on the mat.",
    "marks": [{"selection": "dog", "error_type": "MA_SE", "comment": "wrong animal"}]}]}`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "confirm warnings instead of holding the draft",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output one JSON line per draft",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SubmitCmd) run(ctx context.Context, c *cli.Command) error {
	drafts, err := cmd.reader.Read()
	if err == nil && len(drafts.Drafts) == 0 {
		err = fmt.Errorf("%s contains no drafts", cmd.reader.Source())
	}
	if err != nil {
		if cmd.jsonOutput {
			return jsonFailure(c, "read drafts", err, map[string]any{"source": cmd.reader.Source()})
		}
		return err
	}

	session := cmd.app.NewSession(ctx)
	defer session.Close()
	ctx = session.Context(ctx)

	results, err := session.SubmitDrafts(ctx, drafts, cmd.yes)

	if cmd.jsonOutput {
		for _, res := range results {
			if werr := iojson.WriteLine(c.Root().Writer, res); werr != nil {
				return werr
			}
		}
	} else {
		cmd.print(printer.Ctx(ctx), results)
	}

	if err != nil {
		if cmd.jsonOutput {
			return jsonFailure(c, "submit failed", err, nil)
		}
		return err
	}

	for _, res := range results {
		if res.Status != annotation.StatusSubmitted {
			return cli.Exit("", 1)
		}
	}
	return nil
}

func (cmd *SubmitCmd) print(p *printer.Printer, results []mtqa.DraftResult) {
	for _, res := range results {
		p.Section(fmt.Sprintf("Sentence %d", res.SentenceID))
		for _, m := range res.Marks {
			if m.Error != "" {
				p.WarnItem(fmt.Sprintf("%q", m.Selection), m.Error)
			}
		}

		switch res.Status {
		case annotation.StatusSubmitted:
			verb := "Submitted"
			if res.Updated {
				verb = "Updated"
			}
			p.Successf("%s as %s", verb, res.PersistedID)
			if res.Voice != "" {
				p.Infof("Voice note: %s", res.Voice)
			}
		case annotation.StatusBlocked:
			for _, e := range res.Errors {
				p.Errorf("%s", e.Text)
			}
		case annotation.StatusAwaitingConfirm:
			for _, w := range res.Warnings {
				p.Warnf("%s", w.Text)
			}
			p.Infof("Not submitted; rerun with --yes to confirm")
		default:
			p.Errorf("Submission failed: %s", res.Failure)
		}
	}
}
