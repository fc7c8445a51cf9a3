package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

func TestFeedback(t *testing.T) {
	s := annotation.Sentence{
		ID:                 12,
		SourceText:         "Umupo ang pusa.",
		MachineTranslation: sentence,
		SourceLanguage:     "tl",
		TargetLanguage:     "en",
		Domain:             "news",
	}
	r := &annotation.Record{
		SentenceID: 12,
		Scores:     annotation.Scores{Fluency: annotation.Score(4), Overall: annotation.Score(3)},
		FinalForm:  "The cat sat down.",
		Comments:   "Tense is off.",
		Spans: []annotation.Span{
			{ID: "b", Start: 8, End: 11, Text: "sat", ErrorType: annotation.MinorSyntactic, Comment: "tense"},
			{ID: "a", Start: 4, End: 7, Text: "cat", ErrorType: annotation.MajorSemantic, Comment: "wrong animal"},
		},
	}

	md := Feedback(s, r)

	assert.Contains(t, md, "# Sentence 12")
	assert.Contains(t, md, "_tl → en_ · news")
	assert.Contains(t, md, "The [cat]{MA_SE} [sat]{MI_ST}.")
	assert.Contains(t, md, "| 4/5 | - | 3/5 |")
	assert.Contains(t, md, "## Errors (2)")
	assert.Contains(t, md, "## Final form\n\nThe cat sat down.")
	assert.Contains(t, md, "## Comments\n\nTense is off.")
	assert.Less(t, strings.Index(md, `"cat" [4`), strings.Index(md, `"sat" [8`), "errors are listed by position")
}

func TestFeedback_NoErrors(t *testing.T) {
	md := Feedback(annotation.Sentence{ID: 1, MachineTranslation: sentence}, &annotation.Record{})
	assert.Contains(t, md, "No errors marked.")
	assert.NotContains(t, md, "## Final form")
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nbody", "notty", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "body")
}
