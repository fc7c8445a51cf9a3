package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/core/render"
	"github.com/colonyops/mtqa/internal/mtqa"
)

type ReportCmd struct {
	flags *Flags
	app   *mtqa.App

	raw bool
}

// NewReportCmd creates a new report command
func NewReportCmd(flags *Flags, app *mtqa.App) *ReportCmd {
	return &ReportCmd{flags: flags, app: app}
}

// Register adds the report command to the application
func (cmd *ReportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "report",
		Usage:     "Summarize the submitted annotation of a sentence",
		UsageText: "mtqa report [--raw] <id>",
		Description: `Renders scores, marked errors, final form and comments of a submitted
annotation as markdown. The glamour style and wrap width come from the
render section of the config.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the markdown source",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReportCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := sentenceIDArg(c, 0)
	if err != nil {
		return err
	}

	sentence, rec, err := cmd.app.Report(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("sentence %d has not been annotated", id)
	}

	md := render.Feedback(sentence, rec)
	if cmd.raw || !isTerminal(c.Root().Writer) {
		_, err = fmt.Fprint(c.Root().Writer, md)
		return err
	}

	cfg := cmd.app.Config.Render
	out, err := render.Markdown(md, cfg.Theme, cfg.Width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.Root().Writer, out)
	return err
}
