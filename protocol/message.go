// Package protocol implements the Janus wire codec: the framed,
// big-endian binary messages exchanged between client and server.
package protocol

import (
	"github.com/pkg/errors"
)

// Magic is the 4-byte frame magic, always "jANu".
const Magic = "jANu"

// MaxBodyLen is the largest body a frame may declare.
const MaxBodyLen = 1 << 30 // 1 GiB

// Type identifies a message's wire type.
type Type uint32

// Message type codes.
const (
	TypeHello               Type = 0x1000
	TypeAuth                Type = 0x1001
	TypeGetSystemTimeMillis Type = 0x1801
	TypeFetchFileTree       Type = 0x2001
	TypeCommitSyncPlan      Type = 0x2002
	TypeUploadFile          Type = 0x2003
	TypeUploadArchive       Type = 0x2004
	TypeConfirmArchives     Type = 0x2005
	TypeConfirmFiles        Type = 0x2006
	TypeBye                 Type = 0x2007
	TypeCommonResponse      Type = 0xA001
	TypeDataBlock           Type = 0xA002
)

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

var typeNames = map[Type]string{
	TypeHello:               "Hello",
	TypeAuth:                "Auth",
	TypeGetSystemTimeMillis: "GetSystemTimeMillis",
	TypeFetchFileTree:       "FetchFileTree",
	TypeCommitSyncPlan:      "CommitSyncPlan",
	TypeUploadFile:          "UploadFile",
	TypeUploadArchive:       "UploadArchive",
	TypeConfirmArchives:     "ConfirmArchives",
	TypeConfirmFiles:        "ConfirmFiles",
	TypeBye:                 "Bye",
	TypeCommonResponse:      "CommonResponse",
	TypeDataBlock:           "DataBlock",
}

// ErrUnknownType is returned when a frame declares a type with no
// registered codec.
var ErrUnknownType = errors.New("protocol: unknown message type")

// ErrBadMagic is returned when a frame's magic doesn't match Magic.
var ErrBadMagic = errors.New("protocol: bad frame magic")

// ErrBodyTooLarge is returned when a frame declares a body beyond
// MaxBodyLen.
var ErrBodyTooLarge = errors.New("protocol: body exceeds maximum size")

// Message is the sum type every wire message implements. Encode/Decode
// operate on the body only; the frame header is handled by Encode and
// ReadMessage in codec.go.
type Message interface {
	// MsgType returns this message's wire type code.
	MsgType() Type
	// Encode appends this message's body encoding to dst and returns
	// the result.
	Encode(dst []byte) []byte
	// Decode populates the message from a body buffer. The message
	// must not retain slices of body beyond the call unless it copies
	// them first.
	Decode(body []byte) error
	// Reset clears the message back to its zero value so it can be
	// recycled from the pool.
	Reset()
}
