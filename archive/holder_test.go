package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderAddAndToBytes(t *testing.T) {
	h := NewHolder()
	assert.True(t, h.Empty())

	h.Add(Entry{Path: "a.txt", Perm: 0o644, Data: []byte("hello")})
	h.Add(Entry{Path: "sub/b.txt", Perm: 0o600, Data: []byte("world!")})
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.IsNearlyFull())

	data := h.ToBytes()
	assert.True(t, h.Empty(), "ToBytes should reset the holder")

	e1, n1, err := DecodeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", e1.Path)
	assert.Equal(t, []byte("hello"), e1.Data)

	e2, n2, err := DecodeEntry(data[n1:])
	require.NoError(t, err)
	assert.Equal(t, "sub/b.txt", e2.Path)
	assert.Equal(t, []byte("world!"), e2.Data)
	assert.Equal(t, len(data), n1+n2)
}

func TestHolderNearlyFullByEntryCount(t *testing.T) {
	h := NewHolder()
	for i := 0; i < MaxArchiveEntries; i++ {
		h.Add(Entry{Path: "f", Perm: 0o644, Data: []byte("x")})
	}
	assert.True(t, h.IsNearlyFull())
}

func TestHolderNearlyFullBySize(t *testing.T) {
	h := NewHolder()
	h.Add(Entry{Path: "big", Perm: 0o644, Data: make([]byte, MaxArchiveSize)})
	assert.True(t, h.IsNearlyFull())
}

func TestDecodeEntryTruncated(t *testing.T) {
	_, _, err := DecodeEntry([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncated)
}
