package iojson

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"a","count":2}`), 0o644))

	fr := &FileReader[doc]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, doc{Name: "a", Count: 2}, got)
	assert.Equal(t, path, fr.Source())
}

func TestFileReader_Stdin(t *testing.T) {
	fr := &FileReader[doc]{Stdin: strings.NewReader(`{"name":"b"}`)}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, "stdin", fr.Source())
}

func TestFileReader_UnknownField(t *testing.T) {
	fr := &FileReader[doc]{Stdin: strings.NewReader(`{"nam":"b"}`)}
	_, err := fr.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
}

func TestFileReader_MissingFile(t *testing.T) {
	fr := &FileReader[doc]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}
	_, err := fr.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, doc{Name: "x", Count: 1}))
	assert.Equal(t, "{\"name\":\"x\",\"count\":1}\n", buf.String())
}

func TestWriteWith_Indents(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"ch": make(chan int)}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"json_error"`)
}

func TestMarshalError(t *testing.T) {
	s := MarshalError("boom", map[string]any{"id": 3})
	assert.JSONEq(t, `{"message":"boom","data":{"id":3}}`, s)

	s = MarshalError("boom", map[string]any{"ch": make(chan int)})
	assert.Contains(t, s, `"message":"boom"`)
	assert.Contains(t, s, `"json_error"`)
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteError(&buf, "import failed", errors.New("no sentence files matched"), map[string]any{"patterns": []string{"*.csv"}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"message":"import failed","data":{"error":"no sentence files matched","patterns":["*.csv"]}}`,
		buf.String())
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, WriteError(&buf, "submit failed", nil, nil))
	assert.JSONEq(t, `{"message":"submit failed"}`, buf.String())
}
