package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/pkg/iojson"
)

const queuePreviewWidth = 60

type QueueCmd struct {
	flags *Flags
	app   *mtqa.App

	// flags
	offset     int
	limit      int
	jsonOutput bool
}

// NewQueueCmd creates a new queue command
func NewQueueCmd(flags *Flags, app *mtqa.App) *QueueCmd {
	return &QueueCmd{flags: flags, app: app}
}

// Register adds the queue command to the application
func (cmd *QueueCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "queue",
		Aliases:     []string{"ls"},
		Usage:       "List sentences awaiting annotation",
		UsageText:   "mtqa queue [--offset N] [--limit N] [--json]",
		Description: "Displays active sentences that have not been annotated yet, ordered by id.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "offset",
				Usage:       "number of sentences to skip",
				Destination: &cmd.offset,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "maximum number of sentences (defaults to queue.page_size)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// queueItem is the JSON output format for mtqa queue --json.
type queueItem struct {
	ID                 int64  `json:"id"`
	SourceLanguage     string `json:"source_language"`
	TargetLanguage     string `json:"target_language"`
	Domain             string `json:"domain,omitempty"`
	SourceText         string `json:"source_text"`
	MachineTranslation string `json:"machine_translation"`
}

func (cmd *QueueCmd) run(ctx context.Context, c *cli.Command) error {
	limit := cmd.limit
	if limit <= 0 {
		limit = cmd.app.Config.Queue.PageSize
	}

	sentences, err := cmd.app.Sentences.FetchUnannotated(ctx, cmd.offset, limit)
	if err != nil {
		return fmt.Errorf("list queue: %w", err)
	}

	if len(sentences) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No sentences awaiting annotation\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, s := range sentences {
			item := queueItem{
				ID:                 s.ID,
				SourceLanguage:     s.SourceLanguage,
				TargetLanguage:     s.TargetLanguage,
				Domain:             s.Domain,
				SourceText:         s.SourceText,
				MachineTranslation: s.MachineTranslation,
			}
			if err := iojson.WriteLine(out, item); err != nil {
				return fmt.Errorf("encode sentence: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tLANG\tDOMAIN\tMACHINE TRANSLATION")
	for _, s := range sentences {
		lang := s.SourceLanguage + "→" + s.TargetLanguage
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, lang, s.Domain, truncate(s.MachineTranslation, queuePreviewWidth))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
