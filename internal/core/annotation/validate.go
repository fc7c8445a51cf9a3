package annotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/mtqa/internal/core/validate"
)

// Message codes produced by Validate.
const (
	CodeScoresMissing     = "scores_missing"
	CodeFinalFormRequired = "final_form_required"
	CodeConfirmPerfect    = "confirm_perfect"
	CodeScoreOutOfRange   = "score_out_of_range"
)

// Message is a single validation finding.
type Message struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

func (m Message) String() string {
	return m.Text
}

// Result holds blocking errors and non-blocking warnings for a record.
type Result struct {
	Errors   []Message `json:"errors"`
	Warnings []Message `json:"warnings"`
}

// Blocked reports whether the record may not be submitted.
func (r Result) Blocked() bool {
	return len(r.Errors) > 0
}

// Validate derives errors and warnings from a record. All rules run; none
// short-circuits another.
func Validate(r *Record) Result {
	var res Result

	if r.Scores.Empty() {
		res.Errors = append(res.Errors, Message{
			Code: CodeScoresMissing,
			Text: "Rate the translation in at least one of fluency, adequacy or overall quality (1-5).",
		})
	}

	finalFormMissing := strings.TrimSpace(r.FinalForm) == ""

	if len(r.Spans) > 0 && finalFormMissing {
		res.Errors = append(res.Errors, Message{
			Code: CodeFinalFormRequired,
			Text: "Errors were marked, so the corrected sentence is required in the final form.",
		})
	}

	if len(r.Spans) == 0 && finalFormMissing {
		res.Warnings = append(res.Warnings, Message{
			Code: CodeConfirmPerfect,
			Text: "No errors were marked and no correction was given. Submitting confirms the translation is perfect.",
		})
	}

	if err := validateScores(r.Scores); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				res.Errors = append(res.Errors, Message{
					Code: CodeScoreOutOfRange,
					Text: fmt.Sprintf("%s %s", fe.Field, fe.Err),
				})
			}
		} else {
			res.Errors = append(res.Errors, Message{Code: CodeScoreOutOfRange, Text: err.Error()})
		}
	}

	return res
}

func validateScores(s Scores) error {
	return criterio.ValidateStruct(
		validate.ScoreField("fluency", s.Fluency),
		validate.ScoreField("adequacy", s.Adequacy),
		validate.ScoreField("overall", s.Overall),
	)
}
