package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	content, origin, err := New(path).GetContent()
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.Equal(t, FromFile, origin)
}

func TestGetContentMissingFile(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "absent")).GetContent()
	assert.Error(t, err)
}

func TestGetContentFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("piped")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer r.Close()

	sp := &SourceProvider{stdin: r, clipboard: func() (string, error) { return "", errors.New("unused") }}
	content, origin, err := sp.GetContent()
	require.NoError(t, err)
	assert.Equal(t, "piped", content)
	assert.Equal(t, FromStdin, origin)
}

func TestGetContentFromClipboard(t *testing.T) {
	sp := &SourceProvider{clipboard: func() (string, error) { return "clip", nil }}
	content, origin, err := sp.GetContent()
	require.NoError(t, err)
	assert.Equal(t, "clip", content)
	assert.Equal(t, FromClipboard, origin)

	sp.clipboard = func() (string, error) { return "", errors.New("no display") }
	_, _, err = sp.GetContent()
	assert.ErrorContains(t, err, "no display")
}
