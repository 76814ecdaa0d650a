package protocol

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrTruncated is returned when a body buffer ends before an encoded
// field has been fully read.
var ErrTruncated = errors.New("protocol: truncated message body")

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendBytes(dst []byte, b []byte) []byte {
	dst = appendU64(dst, uint64(len(b)))
	return append(dst, b...)
}

func appendString(dst []byte, s string) []byte {
	return appendBytes(dst, []byte(s))
}

// cursor is a small forward-only reader over a body buffer used by
// every message's Decode method.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) u32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

func (c *cursor) bytes(n uint64) ([]byte, error) {
	if n > uint64(c.remaining()) {
		return nil, ErrTruncated
	}
	b := make([]byte, n)
	copy(b, c.buf[c.pos:c.pos+int(n)])
	c.pos += int(n)
	return b, nil
}

// lenPrefixedBytes reads a u64-length-prefixed byte blob.
func (c *cursor) lenPrefixedBytes() ([]byte, error) {
	n, err := c.u64()
	if err != nil {
		return nil, err
	}
	return c.bytes(n)
}

func (c *cursor) string(n uint64) (string, error) {
	b, err := c.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// lenPrefixedString reads a u64-length-prefixed UTF-8 string.
func (c *cursor) lenPrefixedString() (string, error) {
	b, err := c.lenPrefixedBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rest returns every byte not yet consumed.
func (c *cursor) rest() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}
