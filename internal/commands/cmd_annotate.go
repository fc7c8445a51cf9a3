package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtqa/internal/core/annotation"
	"github.com/colonyops/mtqa/internal/core/eventbus"
	"github.com/colonyops/mtqa/internal/core/offsets"
	"github.com/colonyops/mtqa/internal/core/submit"
	"github.com/colonyops/mtqa/internal/mtqa"
	"github.com/colonyops/mtqa/internal/printer"
)

type annotateAction string

const (
	actionMark      annotateAction = "mark"
	actionUnmark    annotateAction = "unmark"
	actionScores    annotateAction = "scores"
	actionFinalForm annotateAction = "final-form"
	actionComments  annotateAction = "comments"
	actionVoice     annotateAction = "voice"
	actionSubmit    annotateAction = "submit"
	actionSkip      annotateAction = "skip"
	actionQuit      annotateAction = "quit"
)

type AnnotateCmd struct {
	flags *Flags
	app   *mtqa.App

	offset int
}

// NewAnnotateCmd creates a new annotate command
func NewAnnotateCmd(flags *Flags, app *mtqa.App) *AnnotateCmd {
	return &AnnotateCmd{flags: flags, app: app}
}

// Register adds the annotate command to the application
func (cmd *AnnotateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "annotate",
		Usage:     "Annotate sentences interactively",
		UsageText: "mtqa annotate [--offset N] [id]",
		Description: `Opens a sentence (or the next page of the queue) and walks through marking
errors, rating, correcting and submitting it.

Marks are located by typing the erroneous text; the first occurrence in the
machine translation is used.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "offset",
				Usage:       "queue position to start from when no id is given",
				Destination: &cmd.offset,
			},
		},
		ShellComplete: SentenceIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *AnnotateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	session := cmd.app.NewSession(ctx)
	defer session.Close()
	ctx = session.Context(ctx)

	var ids []int64
	if c.Args().Present() {
		id, err := sentenceIDArg(c, 0)
		if err != nil {
			return err
		}
		if _, err := session.Open(ctx, id); err != nil {
			return err
		}
		ids = []int64{id}
	} else {
		queue, err := session.LoadQueue(ctx, cmd.offset, cmd.app.Config.Queue.PageSize)
		if err != nil {
			return err
		}
		for _, s := range queue {
			ids = append(ids, s.ID)
		}
	}

	if len(ids) == 0 {
		p.Infof("No sentences awaiting annotation")
		return nil
	}

	notices := cmd.notices()

	done := 0
	for _, id := range ids {
		submitted, quit, err := cmd.annotate(ctx, c, session, id, notices)
		if err != nil {
			return err
		}
		if submitted {
			done++
		}
		if quit {
			break
		}
	}

	_ = notices.Flush(os.Stderr)
	p.Printf("")
	p.Successf("%d of %d sentence(s) submitted", done, len(ids))
	return nil
}

// notices collects bus notifications so they print between forms.
func (cmd *AnnotateCmd) notices() *printer.Deferred {
	d := printer.NewDeferred()
	if cmd.app.Bus == nil {
		return d
	}

	cmd.app.Bus.SubscribeNotificationPublished(func(n eventbus.NotificationPublishedPayload) {
		switch n.Level {
		case eventbus.LevelError:
			d.Errorf("%s", n.Message)
		case eventbus.LevelWarning:
			d.Warnf("%s", n.Message)
		default:
			d.Infof("%s", n.Message)
		}
	})
	return d
}

// annotate runs the action loop for one sentence until it is submitted,
// skipped or the user quits.
func (cmd *AnnotateCmd) annotate(ctx context.Context, c *cli.Command, s *mtqa.Session, id int64, notices *printer.Deferred) (submitted, quit bool, err error) {
	p := printer.Ctx(ctx)
	w := c.Root().Writer
	color := isTerminal(w)

	for {
		_ = notices.Flush(os.Stderr)

		sentence, ok := s.Sentence(id)
		if !ok {
			return false, false, nil
		}
		rec, _ := s.Get(id)

		_, _ = fmt.Fprintln(w)
		writeHighlighted(w, sentence, rec.Spans, color)
		cmd.printRecord(p, rec)

		action, err := cmd.chooseAction(rec)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, true, nil
			}
			return false, false, err
		}

		switch action {
		case actionQuit:
			return false, true, nil
		case actionSkip:
			return false, false, nil
		case actionSubmit:
			ok, err := cmd.submit(ctx, s, id)
			if err != nil || ok {
				return ok, false, err
			}
			continue
		}

		if err := cmd.edit(ctx, s, id, action); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			return false, false, err
		}
	}
}

func (cmd *AnnotateCmd) printRecord(p *printer.Printer, rec *annotation.Record) {
	score := func(v *int) string {
		if v == nil {
			return "-"
		}
		return strconv.Itoa(*v)
	}
	p.Printf("Scores: fluency %s  adequacy %s  overall %s",
		score(rec.Scores.Fluency), score(rec.Scores.Adequacy), score(rec.Scores.Overall))
	if rec.FinalForm != "" {
		p.Printf("Final form: %s", rec.FinalForm)
	}
	if rec.Comments != "" {
		p.Printf("Comments: %s", rec.Comments)
	}
	if rec.Voice != nil {
		p.Printf("Voice note: %s", rec.Voice.Path)
	}
}

func (cmd *AnnotateCmd) chooseAction(rec *annotation.Record) (annotateAction, error) {
	options := []huh.Option[annotateAction]{
		huh.NewOption("Mark an error", actionMark),
	}
	if len(rec.Spans) > 0 {
		options = append(options, huh.NewOption("Remove a mark", actionUnmark))
	}
	options = append(options,
		huh.NewOption("Rate", actionScores),
		huh.NewOption("Final form", actionFinalForm),
		huh.NewOption("Comments", actionComments),
		huh.NewOption("Attach voice note", actionVoice),
		huh.NewOption("Submit", actionSubmit),
		huh.NewOption("Skip", actionSkip),
		huh.NewOption("Quit", actionQuit),
	)

	action := actionMark
	err := huh.NewSelect[annotateAction]().
		Title(fmt.Sprintf("Sentence %d", rec.SentenceID)).
		Options(options...).
		Value(&action).
		Run()
	return action, err
}

func (cmd *AnnotateCmd) edit(ctx context.Context, s *mtqa.Session, id int64, action annotateAction) error {
	p := printer.Ctx(ctx)
	rec, _ := s.Get(id)

	switch action {
	case actionMark:
		return cmd.mark(p, s, id)

	case actionUnmark:
		var spanID string
		options := make([]huh.Option[string], 0, len(rec.Spans))
		for _, sp := range rec.Spans {
			label := fmt.Sprintf("%q %s: %s", sp.Text, sp.ErrorType.Code(), sp.Comment)
			options = append(options, huh.NewOption(label, sp.ID))
		}
		if err := huh.NewSelect[string]().Title("Remove which mark?").Options(options...).Value(&spanID).Run(); err != nil {
			return err
		}
		_, err := s.Unmark(id, spanID)
		return err

	case actionScores:
		fluency, adequacy, overall := scoreValue(rec.Scores.Fluency), scoreValue(rec.Scores.Adequacy), scoreValue(rec.Scores.Overall)
		err := huh.NewForm(huh.NewGroup(
			scoreSelect("Fluency", &fluency),
			scoreSelect("Adequacy", &adequacy),
			scoreSelect("Overall quality", &overall),
		)).Run()
		if err != nil {
			return err
		}
		return s.Update(id, func(r *annotation.Record) error {
			r.Scores = annotation.Scores{
				Fluency:  scorePtr(fluency),
				Adequacy: scorePtr(adequacy),
				Overall:  scorePtr(overall),
			}
			return nil
		})

	case actionFinalForm:
		finalForm := rec.FinalForm
		if finalForm == "" {
			if sentence, ok := s.Sentence(id); ok {
				finalForm = sentence.MachineTranslation
			}
		}
		err := huh.NewText().
			Title("Final form").
			Description("The corrected translation").
			Value(&finalForm).
			Run()
		if err != nil {
			return err
		}
		return s.Update(id, func(r *annotation.Record) error {
			r.FinalForm = strings.TrimSpace(finalForm)
			return nil
		})

	case actionComments:
		comments := rec.Comments
		if err := huh.NewText().Title("Comments").Value(&comments).Run(); err != nil {
			return err
		}
		return s.Update(id, func(r *annotation.Record) error {
			r.Comments = strings.TrimSpace(comments)
			return nil
		})

	case actionVoice:
		var path string
		err := huh.NewInput().
			Title("Voice note").
			Description("Path to a recorded audio file").
			Validate(validateFile).
			Value(&path).
			Run()
		if err != nil {
			return err
		}
		return s.Update(id, func(r *annotation.Record) error {
			r.Voice = mtqa.VoiceFromPath(path, 0)
			return nil
		})
	}

	return nil
}

func (cmd *AnnotateCmd) mark(p *printer.Printer, s *mtqa.Session, id int64) error {
	var (
		selection string
		comment   string
		errType   = s.DefaultErrorType
	)

	typeOptions := make([]huh.Option[annotation.ErrorType], 0, len(annotation.ErrorTypes()))
	for _, t := range annotation.ErrorTypes() {
		typeOptions = append(typeOptions, huh.NewOption(t.Label(), t))
	}

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Erroneous text").
			Description("Type the text exactly as it appears in the translation").
			Validate(validateRequired("text")).
			Value(&selection),
		huh.NewSelect[annotation.ErrorType]().
			Title("Error type").
			Options(typeOptions...).
			Value(&errType),
		huh.NewText().
			Title("Comment").
			Description("What is wrong with it").
			Validate(validateRequired("comment")).
			Value(&comment),
	)).Run()
	if err != nil {
		return err
	}

	span, inserted, err := s.Mark(id, selection, errType, comment)
	switch {
	case errors.Is(err, offsets.ErrNoMatch):
		p.Warnf("%q does not occur in the translation", selection)
		return nil
	case err != nil:
		return err
	case !inserted:
		p.Infof("%q is already marked with the same type and comment", span.Text)
	default:
		p.Successf("Marked %q [%d-%d) as %s", span.Text, span.Start, span.End, span.ErrorType.Code())
	}
	return nil
}

// submit requests submission of id, asking for confirmation when the
// record has warnings. It reports whether the record was submitted.
func (cmd *AnnotateCmd) submit(ctx context.Context, s *mtqa.Session, id int64) (bool, error) {
	p := printer.Ctx(ctx)

	out, err := s.Submit.Request(ctx, id)

	var blocked *submit.BlockedError
	switch {
	case errors.As(err, &blocked):
		for _, e := range blocked.Errors {
			p.Errorf("%s", e.Text)
		}
		return false, nil
	case errors.Is(err, submit.ErrSubmissionFailed):
		p.Errorf("%v", err)
		return false, nil
	case err != nil:
		return false, err
	}

	if out.NeedsConfirm() {
		for _, w := range out.Warnings {
			p.Warnf("%s", w.Text)
		}

		var confirm bool
		err := huh.NewConfirm().
			Title("Submit anyway?").
			Affirmative("Submit").
			Negative("Back").
			Value(&confirm).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return false, err
		}
		if !confirm {
			return false, s.Submit.Cancel(id)
		}

		out, err = s.Submit.Confirm(ctx, id)
		if errors.Is(err, submit.ErrSubmissionFailed) {
			p.Errorf("%v", err)
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	verb := "Submitted"
	if out.Updated {
		verb = "Updated"
	}
	p.Successf("%s sentence %d as %s", verb, id, out.PersistedID)
	if out.Attachment != nil {
		p.Infof("Voice note uploaded to %s", out.Attachment.URL)
	}
	return true, nil
}

func scoreSelect(title string, v *int) *huh.Select[int] {
	options := []huh.Option[int]{huh.NewOption("not rated", 0)}
	for i := 1; i <= 5; i++ {
		options = append(options, huh.NewOption(strconv.Itoa(i), i))
	}
	return huh.NewSelect[int]().Title(title).Options(options...).Value(v)
}

func scoreValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func scorePtr(v int) *int {
	if v == 0 {
		return nil
	}
	return annotation.Score(v)
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
