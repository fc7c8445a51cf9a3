package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Codes(t *testing.T) {
	for _, et := range ErrorTypes() {
		t.Run(et.Code(), func(t *testing.T) {
			assert.True(t, et.Valid())
			assert.NotEmpty(t, et.Label())

			parsed, err := ParseErrorType(et.Code())
			require.NoError(t, err)
			assert.Equal(t, et, parsed)
		})
	}
}

func TestErrorType_Classification(t *testing.T) {
	assert.False(t, MinorSyntactic.Major())
	assert.False(t, MinorSyntactic.Semantic())
	assert.True(t, MajorSemantic.Major())
	assert.True(t, MajorSemantic.Semantic())
	assert.Equal(t, MinorSemantic, DefaultErrorType)
}

func TestParseErrorType(t *testing.T) {
	et, err := ParseErrorType("MajorSyntactic")
	require.NoError(t, err)
	assert.Equal(t, MajorSyntactic, et)

	_, err = ParseErrorType("XX")
	assert.ErrorIs(t, err, ErrUnknownErrorType)

	assert.False(t, ErrorType(9).Valid())
	assert.Equal(t, "ErrorType(9)", ErrorType(9).String())
}

func TestErrorType_Text(t *testing.T) {
	b, err := MajorSemantic.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "MA_SE", string(b))

	var et ErrorType
	require.NoError(t, et.UnmarshalText([]byte("MI_ST")))
	assert.Equal(t, MinorSyntactic, et)

	_, err = ErrorType(0).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownErrorType)
}
