package plan

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/internal/pathsafe"
	"github.com/janus-sync/janus/tree"
)

// Encode serialises a single plan subtree, as carried inside one
// CommitSyncPlan entry.
func Encode(n *Node) []byte {
	var dst []byte
	return encodeNode(dst, n)
}

func encodeNode(dst []byte, n *Node) []byte {
	dst = append(dst, byte(n.FileType))
	dst = append(dst, byte(n.Action))
	dst = appendU32(dst, n.Perm)
	dst = appendI64(dst, n.Size)
	dst = appendString(dst, n.Name)
	dst = appendString(dst, n.Path)
	dst = appendU32(dst, uint32(len(n.Children)))
	for _, c := range n.Children {
		dst = encodeNode(dst, c)
	}
	return dst
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendI64(dst []byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(dst, b[:]...)
}

func appendString(dst []byte, s string) []byte {
	dst = appendU32(dst, uint32(len(s)))
	return append(dst, s...)
}

// Decode parses one plan subtree, rejecting any node whose path
// escapes root: the same path-safety check applied to tree nodes
// applies here too.
func Decode(root string, data []byte) (*Node, error) {
	d := &decoder{buf: data}
	n, err := d.node(root)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.buf) {
		return nil, errors.New("plan: trailing bytes after decoded subtree")
	}
	return n, nil
}

type decoder struct {
	buf []byte
	pos int
}

var errTrunc = errors.New("plan: truncated encoded node")

func (d *decoder) u8() (byte, error) {
	if d.pos+1 > len(d.buf) {
		return 0, errTrunc
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) u32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, errTrunc
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *decoder) i64() (int64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, errTrunc
	}
	v := int64(binary.BigEndian.Uint64(d.buf[d.pos : d.pos+8]))
	d.pos += 8
	return v, nil
}

func (d *decoder) str(n uint32) (string, error) {
	if d.pos+int(n) > len(d.buf) {
		return "", errTrunc
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

func (d *decoder) node(root string) (*Node, error) {
	fileType, err := d.u8()
	if err != nil {
		return nil, err
	}
	action, err := d.u8()
	if err != nil {
		return nil, err
	}
	perm, err := d.u32()
	if err != nil {
		return nil, err
	}
	size, err := d.i64()
	if err != nil {
		return nil, err
	}
	nameLen, err := d.u32()
	if err != nil {
		return nil, err
	}
	name, err := d.str(nameLen)
	if err != nil {
		return nil, err
	}
	pathLen, err := d.u32()
	if err != nil {
		return nil, err
	}
	path, err := d.str(pathLen)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := pathsafe.Resolve(root, path); err != nil {
			return nil, err
		}
	}

	n := &Node{
		FileType: tree.Type(fileType),
		Action:   Action(action),
		Perm:     perm,
		Size:     size,
		Name:     name,
		Path:     path,
	}

	childCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	if childCount > 0 {
		n.Children = make([]*Node, 0, childCount)
		for i := uint32(0); i < childCount; i++ {
			c, err := d.node(root)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
	}
	return n, nil
}
