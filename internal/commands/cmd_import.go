package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/internal/printer"
	"github.com/colonyops/mtqa/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *mtqa.App

	jsonOutput bool
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *mtqa.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Load sentences from YAML, JSON or CSV files",
		UsageText: "mtqa import [--json] <pattern>...",
		Description: `Reads every file matched by the given patterns and stores its sentences.

Patterns support ** for recursive matching, e.g. 'batches/**/*.yaml'.
Sentences with an id replace the stored text of that id; sentences
without one are appended.

CSV files need a header row with source_text and machine_translation
columns. id, reference_translation, source_language (default en),
target_language (default tgl) and domain are optional.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the import summary as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	patterns := c.Args().Slice()
	if len(patterns) == 0 {
		return fmt.Errorf("at least one file pattern is required")
	}

	res, err := cmd.app.Import(ctx, patterns)
	if err != nil {
		if cmd.jsonOutput {
			return jsonFailure(c, "import failed", err, map[string]any{"patterns": patterns})
		}
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, res)
	}

	p := printer.Ctx(ctx)
	for _, f := range res.Files {
		p.Printf("  %s", f)
	}
	p.Successf("Imported %d sentence(s) from %d file(s)", res.Count, len(res.Files))
	return nil
}
