package attachments

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

type fakeRecorder struct {
	id       annotation.PersistedID
	url      string
	duration time.Duration
	err      error
}

func (f *fakeRecorder) SetVoiceRecording(_ context.Context, id annotation.PersistedID, url string, d time.Duration) error {
	f.id, f.url, f.duration = id, url, d
	return f.err
}

func TestVoiceKey(t *testing.T) {
	tests := []struct {
		id   annotation.PersistedID
		ext  string
		want string
	}{
		{id: "abc", ext: ".wav", want: "voice/abc.wav"},
		{id: "abc", ext: "WEBM", want: "voice/abc.webm"},
		{id: "abc", ext: "", want: "voice/abc"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VoiceKey(tt.id, tt.ext))
	}
}

func TestValidateKey(t *testing.T) {
	assert.ErrorIs(t, validateKey(""), ErrEmptyKey)
	assert.ErrorIs(t, validateKey("voice/"), ErrEmptyKey)
	assert.ErrorIs(t, validateKey("voice/../etc/passwd"), ErrInvalidKey)
	assert.NoError(t, validateKey("voice/abc.wav"))
}

func TestFilesystemBackend_Put(t *testing.T) {
	root := t.TempDir()
	fs := NewFilesystemBackend(root)
	require.NoError(t, fs.Ensure(context.Background()))

	got, err := fs.Put(context.Background(), "voice/a.wav", strings.NewReader("RIFF"), "audio/wav")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)

	data, err := os.ReadFile(u.Path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))

	entries, err := os.ReadDir(root + "/voice")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestFilesystemBackend_PutCancelled(t *testing.T) {
	fs := NewFilesystemBackend(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Put(ctx, "voice/a.wav", strings.NewReader("RIFF"), "audio/wav")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUploader_UploadVoice(t *testing.T) {
	rec := &fakeRecorder{}
	u := NewUploader(NewFilesystemBackend(t.TempDir()), rec)

	ack, err := u.UploadVoice(context.Background(), annotation.Attachment{
		Body:        strings.NewReader("RIFF"),
		ContentType: "audio/wav",
		Extension:   ".wav",
		Duration:    3 * time.Second,
	}, "p-1")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(ack.URL, "/voice/p-1.wav"))
	assert.Equal(t, 3*time.Second, ack.Duration)
	assert.Equal(t, annotation.PersistedID("p-1"), rec.id)
	assert.Equal(t, ack.URL, rec.url)
}

type failingBackend struct{}

func (failingBackend) Ensure(context.Context) error { return nil }

func (failingBackend) Put(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("container missing")
}

func TestUploader_Errors(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		u := NewUploader(failingBackend{}, nil)
		_, err := u.UploadVoice(context.Background(), annotation.Attachment{Body: strings.NewReader("x"), Extension: ".wav"}, "p-1")
		require.ErrorIs(t, err, annotation.ErrAttachmentUpload)
		assert.Contains(t, err.Error(), "container missing")
	})

	t.Run("traversal in id", func(t *testing.T) {
		u := NewUploader(NewFilesystemBackend(t.TempDir()), nil)
		_, err := u.UploadVoice(context.Background(), annotation.Attachment{Body: strings.NewReader("x")}, "../../x")
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("recorder failure", func(t *testing.T) {
		u := NewUploader(NewFilesystemBackend(t.TempDir()), &fakeRecorder{err: annotation.ErrAnnotationNotFound})
		_, err := u.UploadVoice(context.Background(), annotation.Attachment{Body: strings.NewReader("x"), Extension: ".wav"}, "p-1")
		require.ErrorIs(t, err, annotation.ErrAnnotationNotFound)
	})
}

func TestAzureBackend_BlobURL(t *testing.T) {
	conn := "DefaultEndpointsProtocol=https;AccountName=mtqadev;AccountKey=dGVzdGtleQ==;EndpointSuffix=core.windows.net"

	az, err := NewAzureBackend(conn, "voice-notes")
	require.NoError(t, err)

	got := az.BlobURL("voice/p-1.wav")
	assert.Contains(t, got, "mtqadev.blob.core.windows.net")
	assert.Contains(t, got, "/voice-notes/")
	assert.True(t, strings.HasSuffix(got, "p-1.wav"), got)

	_, err = az.Put(context.Background(), "voice/../x", strings.NewReader("x"), "audio/wav")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewAzureBackend_BadConnectionString(t *testing.T) {
	_, err := NewAzureBackend("not a connection string", "voice-notes")
	require.Error(t, err)
}
