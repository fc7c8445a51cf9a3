package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsBusyError_NonSQLite(t *testing.T) {
	assert.False(t, IsBusyError(errors.New("database is locked")))
	assert.False(t, IsConstraintError(errors.New("UNIQUE constraint failed")))
}

func TestIsCorruptionError_Message(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.False(t, IsCorruptionError(errors.New("no such table")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"mtqa.db", "mtqa.db-wal"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("junk"), 0o644))
	}

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "mtqa.db"))
	assert.NoFileExists(t, filepath.Join(dir, "mtqa.db-wal"))
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")
}
