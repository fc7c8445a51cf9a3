package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"lower bound", 1, false},
		{"upper bound", 5, false},
		{"middle", 3, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"above range", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Score(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Score(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestScoreField(t *testing.T) {
	assert.NoError(t, ScoreField("fluency", nil), "unset score is valid")

	v := 4
	assert.NoError(t, ScoreField("fluency", &v))

	v = 9
	err := criterio.ValidateStruct(ScoreField("fluency", &v))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "fluency", fieldErrs[0].Field)
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid text", "fixed sentence", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Required(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestSentenceID(t *testing.T) {
	assert.NoError(t, SentenceID(1))
	assert.Error(t, SentenceID(0))
	assert.Error(t, SentenceID(-4))
}
