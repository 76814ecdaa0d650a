package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedArchive(t *testing.T, stream *Stream, data []byte, blockSize int) {
	t.Helper()
	for len(data) > 0 {
		n := blockSize
		if n > len(data) {
			n = len(data)
		}
		stream.Write(data[:n])
		data = data[n:]
	}
	stream.Close()
}

func TestPoolExtractsEntries(t *testing.T) {
	root := t.TempDir()
	pool := NewPool(root)

	h := NewHolder()
	h.Add(Entry{Path: "a.txt", Perm: 0o644, Data: []byte("hello")})
	h.Add(Entry{Path: "nested/b.txt", Perm: 0o644, Data: []byte("world")})
	data := h.ToBytes()

	stream := pool.Begin(1, int64(len(data)))
	feedArchive(t, stream, data, 4) // small blocks to exercise cross-block entry parsing

	results := pool.CheckExtracted(true)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].SeqID)
	assert.Equal(t, int32(0), results[0].Status)

	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(root, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
}

func TestPoolRejectsEscapingEntry(t *testing.T) {
	root := t.TempDir()
	pool := NewPool(root)

	h := NewHolder()
	h.Add(Entry{Path: "../escape.txt", Perm: 0o644, Data: []byte("nope")})
	data := h.ToBytes()

	stream := pool.Begin(2, int64(len(data)))
	feedArchive(t, stream, data, len(data))

	results := pool.CheckExtracted(true)
	require.Len(t, results, 1)
	assert.Equal(t, int32(0), results[0].Status, "an escaping entry is skipped, not fatal")

	_, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPoolCheckExtractedNonBlockingWhenEmpty(t *testing.T) {
	pool := NewPool(t.TempDir())
	results := pool.CheckExtracted(false)
	assert.Empty(t, results)
}
