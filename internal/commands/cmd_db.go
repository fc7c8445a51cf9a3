package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/data/db"
	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/internal/printer"
)

type DBCmd struct {
	flags *Flags
	app   *mtqa.App

	steps int
}

// NewDBCmd creates a new db command
func NewDBCmd(flags *Flags, app *mtqa.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Database maintenance commands",
		Commands: []*cli.Command{
			{
				Name:      "rollback",
				Usage:     "Revert the most recent schema migrations",
				UsageText: "mtqa db rollback [--steps N]",
				Description: `Reverts the last N applied migrations. Run it before downgrading to a
release with an older schema; any newer mtqa command applies the
migrations again on startup.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Aliases:     []string{"n"},
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
				},
				Action: cmd.rollback,
			},
		},
	})

	return app
}

func (cmd *DBCmd) rollback(ctx context.Context, c *cli.Command) error {
	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), cmd.steps); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	printer.Ctx(ctx).Successf("Reverted %d migration(s) in %s", cmd.steps, cmd.flags.Config.DatabaseFile())
	return nil
}
