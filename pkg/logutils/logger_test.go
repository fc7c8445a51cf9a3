package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "mtqa.log")

	for range 2 {
		l, closer, err := New("info", file)
		require.NoError(t, err)
		l.Info().Msg("line")
		l.Debug().Msg("filtered")
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data), "file should be appended, not truncated")
	assert.NotContains(t, string(data), "filtered")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	closer()
}

func TestNew_Level(t *testing.T) {
	l, _, err := New("warn", "")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

func countLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}
