package tree

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/internal/pathsafe"
)

// Encode serialises n (and its descendants) into the compact
// self-describing layout used on the wire for FetchFileTree responses:
// per node, type byte, permission bits, mtime, size, length-prefixed
// name, child count, then the children.
func Encode(n *Node) []byte {
	var dst []byte
	return encodeNode(dst, n)
}

func encodeNode(dst []byte, n *Node) []byte {
	dst = append(dst, byte(n.Type))
	dst = appendU32(dst, n.Perm)
	dst = appendI64(dst, n.MtimeMs)
	dst = appendI64(dst, n.Size)
	dst = appendString(dst, n.Name)
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

// Decode parses the layout Encode produces, reconstructing the
// parent-relative Path of every node (parent pointers are omitted from
// the wire format and reconstructed post-deserialisation) and
// rejecting any tree that would violate the sibling-uniqueness or
// path-safety invariants.
func Decode(root string, data []byte) (*Node, error) {
	dec := &decoder{buf: data}
	n, err := dec.node("", root, true)
	if err != nil {
		return nil, err
	}
	if dec.pos != len(dec.buf) {
		return nil, errors.New("tree: trailing bytes after decoded tree")
	}
	if err := n.ValidateUniqueChildNames(); err != nil {
		return nil, err
	}
	return n, nil
}

type decoder struct {
	buf []byte
	pos int
}

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

var errTrunc = errors.New("tree: truncated encoded node")

func (d *decoder) node(parentPath, root string, isRoot bool) (*Node, error) {
	typeByte, err := d.u8()
	if err != nil {
		return nil, err
	}
	perm, err := d.u32()
	if err != nil {
		return nil, err
	}
	mtime, err := d.i64()
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

	// root node: name is conventionally empty and its path is ""
	path := ""
	if !isRoot {
		if !pathsafe.ValidSegment(name) {
			return nil, errors.Errorf("tree: unsafe node name %q under %q", name, parentPath)
		}
		path = name
		if parentPath != "" {
			path = parentPath + "/" + name
		}
	}
	if path != "" {
		if _, err := pathsafe.Resolve(root, path); err != nil {
			return nil, err
		}
	}

	n := &Node{
		Type:    Type(typeByte),
		Name:    name,
		Path:    path,
		MtimeMs: mtime,
		Size:    size,
		Perm:    perm,
	}

	childCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	if childCount > 0 {
		n.Children = make([]*Node, 0, childCount)
		for i := uint32(0); i < childCount; i++ {
			c, err := d.node(path, root, false)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
	}
	return n, nil
}
