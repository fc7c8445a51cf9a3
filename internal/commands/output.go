package commands

import (
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/pkg/iojson"
)

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// jsonFailure reports err as error JSON on stderr and exits non-zero without
// printing the error again.
func jsonFailure(c *cli.Command, msg string, err error, data map[string]any) error {
	if werr := iojson.WriteError(errWriter(c), msg, err, data); werr != nil {
		return werr
	}
	return cli.Exit("", 1)
}
