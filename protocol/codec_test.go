package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := EncodeHeader(TypeHello, 42)
	got, err := DecodeHeader(h)
	require.NoError(t, err)
	assert.Equal(t, TypeHello, got.Type)
	assert.Equal(t, uint64(42), got.BodyLen)
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	h := EncodeHeader(TypeHello, 0)
	h[0] = 'x'
	_, err := DecodeHeader(h)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeHeaderOversizeBody(t *testing.T) {
	h := EncodeHeader(TypeHello, 0)
	// overwrite body length with something beyond the 1 GiB ceiling
	for i := 8; i < 16; i++ {
		h[i] = 0xff
	}
	_, err := DecodeHeader(h)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

// messageRoundTripCases enumerates every defined message type with a
// representative, non-zero instance so the framing round trip
// (decode(encode(m)) == m) is checked for each.
func messageRoundTripCases() []Message {
	return []Message{
		&Hello{Versions: []uint64{1, 2, 3}},
		&Auth{Payload: []byte("workspace-name")},
		&GetSystemTimeMillis{},
		&FetchFileTree{},
		&CommitSyncPlan{Subtrees: [][]byte{[]byte("one"), []byte("two")}},
		&UploadFile{Nonce: 7, Perm: 0o644, Reserved: 0, Size: 1024, Path: "a/b/c.txt"},
		&UploadArchive{SeqID: 9, ArchiveSize: 4096},
		&ConfirmArchives{NoBlock: true},
		&ConfirmFiles{},
		&Bye{},
		&CommonResponse{Code: 1, Data: []byte("bad auth")},
		&DataBlock{Data: []byte{1, 2, 3, 4, 5}},
	}
}

func TestMessageRoundTrip(t *testing.T) {
	for _, want := range messageRoundTripCases() {
		t.Run(want.MsgType().String(), func(t *testing.T) {
			frame := Encode(want)
			got, err := ReadMessage(bytes.NewReader(frame))
			require.NoError(t, err)
			defer Recycle(got)
			assert.Equal(t, want, got)
		})
	}
}

func TestFileAckRoundTrip(t *testing.T) {
	acks := []FileAck{{Nonce: 1, Code: 0}, {Nonce: 2, Code: 1}}
	data := EncodeFileAcks(acks)
	got, err := DecodeFileAcks(data)
	require.NoError(t, err)
	assert.Equal(t, acks, got)
}

func TestArchiveAckRoundTrip(t *testing.T) {
	acks := []ArchiveAck{{SeqID: 1, Status: 0}, {SeqID: 2, Status: 1}}
	data := EncodeArchiveAcks(acks)
	got, err := DecodeArchiveAcks(data)
	require.NoError(t, err)
	assert.Equal(t, acks, got)
}

func TestPoolRecycleIsIdempotent(t *testing.T) {
	msg, ok := Borrow(TypeHello)
	require.True(t, ok)
	assert.NotPanics(t, func() {
		Recycle(msg)
		Recycle(msg)
	})
}

func TestUnknownTypeRejected(t *testing.T) {
	_, err := DecodeBody(Type(0xDEAD), nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}
