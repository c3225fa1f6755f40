package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.bin")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestOpen(t *testing.T) {
	content := []byte("DIPHA header, then values")
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Len())
	assert.Equal(t, content, m.Bytes())
}

func TestOpen_Empty(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)

	assert.Zero(t, m.Len())
	v, err := m.View(0, 0, Sequential)
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, m.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestView(t *testing.T) {
	content := make([]byte, 3*os.Getpagesize()+17)
	for i := range content {
		content[i] = byte(i)
	}
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)

	for _, advice := range []Advice{Normal, Sequential, WillNeed} {
		v, err := m.View(40, 1000, advice)
		require.NoError(t, err)
		assert.Equal(t, content[40:1040], v)
	}

	tail, err := m.View(len(content)-17, 17, Sequential)
	require.NoError(t, err)
	assert.Equal(t, content[len(content)-17:], tail)

	_, err = m.View(-1, 1, Normal)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.View(len(content)-1, 2, Normal)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	_, err = m.View(0, 1, Normal)
	assert.ErrorIs(t, err, ErrClosed)
}
