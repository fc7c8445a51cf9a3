package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/commands"
	"github.com/colonyops/mtqa/internal/core/config"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/logging"
	"github.com/colonyops/mtqa/internal/data/db"
	"github.com/colonyops/mtqa/internal/data/stores"
	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/internal/printer"
	"github.com/colonyops/mtqa/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

const eventBufferSize = 64

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		mtqaApp   = &mtqa.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "mtqa",
		Usage:     "Annotate machine translation errors",
		UsageText: "mtqa [global options] command [command options]",
		Description: `mtqa records human judgments of machine-translated sentences: which
stretches of the translation are wrong and how badly, 1-5 quality scores,
a corrected final form, comments and an optional voice note.

Run 'mtqa import' to load sentences, then 'mtqa annotate' to work through
the queue interactively or 'mtqa submit' to submit prepared drafts.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("MTQA_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("MTQA_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("MTQA_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("MTQA_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil && stores.IsCorruptionError(err) {
				backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
				if rerr != nil {
					return ctx, fmt.Errorf("recover corrupted database: %w", rerr)
				}
				log.Warn().Err(err).Str("backup", backup).Msg("database was corrupted, starting from an empty one")
				database, err = db.Open(cfg.DataDir, dbOpts)
			}
			if err != nil {
				return ctx, fmt.Errorf("open database %s: %w", filepath.Base(cfg.DatabaseFile()), err)
			}

			bus := startEventBus(ctx, &busCancel)

			built, err := mtqa.NewApp(cfg, database, bus)
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*mtqaApp = *built

			return printer.NewContext(ctx, printer.New(os.Stderr)), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewImportCmd(flags, mtqaApp).Register(app)
	app = commands.NewQueueCmd(flags, mtqaApp).Register(app)
	app = commands.NewShowCmd(flags, mtqaApp).Register(app)
	app = commands.NewAnnotateCmd(flags, mtqaApp).Register(app)
	app = commands.NewSubmitCmd(flags, mtqaApp).Register(app)
	app = commands.NewReportCmd(flags, mtqaApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDBCmd(flags, mtqaApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

// startEventBus starts the bus dispatch loop with debug logging and routes
// user-facing notifications to the log.
func startEventBus(ctx context.Context, cancel *context.CancelFunc) *eventbus.EventBus {
	bus := eventbus.New(eventBufferSize)
	eventbus.RegisterDebugLogger(bus, logging.Component("events"))
	eventbus.NewNotificationRouter(bus).Register()

	notices := logging.Component("notify")
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		notices.WithLevel(noticeLevel(p.Level)).Msg(p.Message)
	})

	busCtx, busCancel := context.WithCancel(ctx)
	*cancel = busCancel
	go bus.Start(busCtx)

	return bus
}

func noticeLevel(l eventbus.Level) zerolog.Level {
	switch l {
	case eventbus.LevelError:
		return zerolog.ErrorLevel
	case eventbus.LevelWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
