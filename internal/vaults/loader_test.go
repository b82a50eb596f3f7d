package vaults

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy_bot/pkg/logger"
)

func TestLoader_MissingFileCreatedEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_vaults.txt")
	l := NewLoader(path, logger.NewNop())

	addrs, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, addrs)

	// файл должен появиться, чтобы его можно было дописать на ходу
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoader_SkipsBlanksCommentsAndGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_vaults.txt")
	body := "\n0xaaa\n  \n# комментарий\nnot-an-address\n  0xbbb  \n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	addrs, err := NewLoader(path, logger.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, addrs)
}

func TestLoader_PreservesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_vaults.txt")
	require.NoError(t, os.WriteFile(path, []byte("0xccc\n0xaaa\n0xbbb\n"), 0o644))

	addrs, err := NewLoader(path, logger.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xccc", "0xaaa", "0xbbb"}, addrs)
}

func TestChanged(t *testing.T) {
	assert.False(t, Changed([]string{"A", "B"}, []string{"A", "B"}))
	assert.False(t, Changed(nil, []string{}))

	// сравнение чувствительно к порядку
	assert.True(t, Changed([]string{"A", "B"}, []string{"B", "A"}))
	assert.True(t, Changed([]string{"A"}, []string{"A", "B"}))
	assert.True(t, Changed([]string{"A", "B"}, []string{"A"}))
}
