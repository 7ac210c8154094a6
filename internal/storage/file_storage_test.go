package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s, err := NewFileStorage(dir, 0)
	require.NoError(t, err)

	path, n, err := s.Save(context.Background(), "../../etc/report.csv", strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.csv"), path)
	assert.Equal(t, int64(4), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStorage_Limit(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, 1)
	require.NoError(t, err)

	_, _, err = s.Save(context.Background(), "big.xlsx", strings.NewReader(strings.Repeat("x", 1024*1024+1)))
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStorage_CanceledContext(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.Save(ctx, "x.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
