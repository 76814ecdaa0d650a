package protocol

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// HeaderLen is the size in bytes of a frame header: magic(4) + type(4) + bodyLen(8).
const HeaderLen = 4 + 4 + 8

// Header is a decoded frame header.
type Header struct {
	Type    Type
	BodyLen uint64
}

// EncodeHeader writes a frame header for a body of the given type and
// length.
func EncodeHeader(t Type, bodyLen int) []byte {
	buf := make([]byte, HeaderLen)
	copy(buf[0:4], Magic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(t))
	binary.BigEndian.PutUint64(buf[8:16], uint64(bodyLen))
	return buf
}

// DecodeHeader parses a HeaderLen-byte buffer into a Header, validating
// the magic and the body length ceiling.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderLen {
		return Header{}, errors.Errorf("protocol: header must be %d bytes, got %d", HeaderLen, len(buf))
	}
	if string(buf[0:4]) != Magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Type:    Type(binary.BigEndian.Uint32(buf[4:8])),
		BodyLen: binary.BigEndian.Uint64(buf[8:16]),
	}
	if h.BodyLen > MaxBodyLen {
		return Header{}, ErrBodyTooLarge
	}
	return h, nil
}

// Encode serialises msg into a full frame: header followed by body.
func Encode(msg Message) []byte {
	body := msg.Encode(nil)
	frame := EncodeHeader(msg.MsgType(), len(body))
	return append(frame, body...)
}

// WriteMessage encodes msg and writes the whole frame to w.
func WriteMessage(w io.Writer, msg Message) error {
	frame := Encode(msg)
	_, err := w.Write(frame)
	return errors.Wrap(err, "protocol: write message")
}

// ReadMessage reads one full frame from r: a HeaderLen header followed
// by its declared body, decoding it through the type registry. The
// returned message was Borrow()ed from the type's pool; the caller
// should Recycle it when done.
func ReadMessage(r io.Reader) (Message, error) {
	hdr := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, errors.Wrap(err, "protocol: read header")
	}
	h, err := DecodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	body := make([]byte, h.BodyLen)
	if h.BodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, errors.Wrap(err, "protocol: read body")
		}
	}
	msg, err := DecodeBody(h.Type, body)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeBody looks up t in the registry, borrows a pooled instance and
// decodes body into it.
func DecodeBody(t Type, body []byte) (Message, error) {
	msg, ok := Borrow(t)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "type 0x%x", uint32(t))
	}
	if err := msg.Decode(body); err != nil {
		Recycle(msg)
		return nil, errors.Wrapf(err, "protocol: decode %s body", t)
	}
	return msg, nil
}
