package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/mtqa"
)

// SentenceIDCompleter returns a ShellCompleteFunc that suggests the ids of
// queued sentences as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func SentenceIDCompleter(app *mtqa.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		sentences, err := app.Sentences.FetchUnannotated(ctx, 0, 0)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, s := range sentences {
			_, _ = fmt.Fprintln(w, s.ID)
		}
	}
}

// sentenceIDArg parses the positional sentence id at index i.
func sentenceIDArg(c *cli.Command, i int) (int64, error) {
	raw := c.Args().Get(i)
	if raw == "" {
		return 0, fmt.Errorf("sentence id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid sentence id %q", raw)
	}
	return id, nil
}
