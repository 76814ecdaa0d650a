package mmapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	payload := []byte("hello, mmap world")

	mf, err := Create(path, int64(len(payload)), 0o644)
	require.NoError(t, err)

	n, err := mf.WriteAt(payload, 0)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	require.NoError(t, mf.Force())
	require.NoError(t, mf.Close())

	rf, err := Open(path)
	require.NoError(t, err)
	defer rf.Close()

	got := make([]byte, len(payload))
	n, err = rf.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, got)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	mf, err := Create(path, 4, 0o644)
	require.NoError(t, err)
	require.NoError(t, mf.Close())
	require.NoError(t, mf.Close())
}

func TestWriteAtRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	mf, err := Create(path, 4, 0o644)
	require.NoError(t, err)
	defer mf.Close()

	_, err = mf.WriteAt([]byte("too long"), 0)
	assert.Error(t, err)
}

func TestReadAtAcrossChunkBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	size := chunkSize + 14 // the 28-byte tail below straddles the chunk boundary
	mf, err := Create(path, int64(size), 0o644)
	require.NoError(t, err)

	tail := []byte("boundary-spanning-tail-bytes")
	_, err = mf.WriteAt(tail, int64(size)-int64(len(tail)))
	require.NoError(t, err)
	require.NoError(t, mf.Force())
	require.NoError(t, mf.Close())

	rf, err := Open(path)
	require.NoError(t, err)
	defer rf.Close()

	got := make([]byte, len(tail))
	_, err = rf.ReadAt(got, int64(size)-int64(len(tail)))
	require.NoError(t, err)
	assert.Equal(t, tail, got)
	assert.Equal(t, int64(size), rf.Size())
}

func TestApplyPerm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, ApplyPerm(path, 0o640))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}
