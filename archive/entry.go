// Package archive implements the small-file archive path: packing
// many small files into one linear byte stream on the client, and
// concurrently extracting that stream back into files on the server.
package archive

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// SmallFileThreshold is the inclusive size cutoff at or below which a
// file is packed into an archive rather than sent via UploadFile: a
// file of exactly this size still counts as small.
const SmallFileThreshold = 256 * 1024

// MaxArchiveSize and MaxArchiveEntries bound a holder before rollover;
// reaching either exactly triggers rollover on the next add.
const (
	MaxArchiveSize    = 128 * 1024 * 1024
	MaxArchiveEntries = 1024
)

// Entry is one packed file: {path_len:u32, perm_bits:u32,
// data_len:u64, path_utf8, data}.
type Entry struct {
	Path string
	Perm uint32
	Data []byte
}

// encodedLen returns the number of wire bytes this entry occupies.
func (e Entry) encodedLen() int {
	return 4 + 4 + 8 + len(e.Path) + len(e.Data)
}

func appendEntry(dst []byte, e Entry) []byte {
	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], uint32(len(e.Path)))
	dst = append(dst, b4[:]...)
	binary.BigEndian.PutUint32(b4[:], e.Perm)
	dst = append(dst, b4[:]...)
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], uint64(len(e.Data)))
	dst = append(dst, b8[:]...)
	dst = append(dst, e.Path...)
	dst = append(dst, e.Data...)
	return dst
}

// ErrTruncated is returned by DecodeEntry when the supplied buffer
// ends before a complete entry header or payload.
var ErrTruncated = errors.New("archive: truncated entry")

// DecodeEntry parses one entry from the front of buf, returning the
// entry and the number of bytes consumed.
func DecodeEntry(buf []byte) (Entry, int, error) {
	if len(buf) < 16 {
		return Entry{}, 0, ErrTruncated
	}
	pathLen := binary.BigEndian.Uint32(buf[0:4])
	perm := binary.BigEndian.Uint32(buf[4:8])
	dataLen := binary.BigEndian.Uint64(buf[8:16])
	pos := 16
	if uint64(len(buf)-pos) < uint64(pathLen) {
		return Entry{}, 0, ErrTruncated
	}
	path := string(buf[pos : pos+int(pathLen)])
	pos += int(pathLen)
	if uint64(len(buf)-pos) < dataLen {
		return Entry{}, 0, ErrTruncated
	}
	data := buf[pos : pos+int(dataLen)]
	pos += int(dataLen)
	return Entry{Path: path, Perm: perm, Data: data}, pos, nil
}
