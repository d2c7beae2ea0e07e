package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorageRoundTrip(t *testing.T) {
	base := t.TempDir()
	s := NewFileStorage(base)

	location, err := s.Save(filepath.Join("results", "a.png"), strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(location))
	assert.True(t, s.Exists(filepath.Join("results", "a.png")))

	r, err := s.Get(filepath.Join("results", "a.png"))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	r.Close()
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	entries, err := os.ReadDir(filepath.Join(base, "results"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Delete(filepath.Join("results", "a.png")))
	assert.False(t, s.Exists(filepath.Join("results", "a.png")))
}

func TestFileStorageRejectsEscapes(t *testing.T) {
	s := NewFileStorage(t.TempDir())

	_, err := s.Save("../outside.png", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Get("../../etc/passwd")
	assert.Error(t, err)
	assert.False(t, s.Exists("../outside.png"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestFileStorageFailedWriteLeavesNothing(t *testing.T) {
	base := t.TempDir()
	s := NewFileStorage(base)

	_, err := s.Save("results/b.png", failingReader{})
	assert.Error(t, err)
	assert.False(t, s.Exists("results/b.png"))

	entries, err := os.ReadDir(filepath.Join(base, "results"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
