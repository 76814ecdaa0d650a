// Package tree models a synchronised directory tree and provides the
// parallel walker that builds one from a local workspace.
package tree

import "sort"

// Type classifies a tree node. Only File and Directory participate in
// sync; Symlink and Other are recorded for completeness but dropped by
// the plan builder.
type Type int

// Node types.
const (
	File Type = iota
	Directory
	Symlink
	Other
)

func (t Type) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "other"
	}
}

// Node is one entry of a synchronised tree: {type, name, size,
// mtime_millis, permission_bits, children, path}. Path is always
// relative to the workspace root and uses '/' separators.
type Node struct {
	Type     Type
	Name     string
	Path     string
	Size     int64
	MtimeMs  int64
	Perm     uint32
	Children []*Node
}

// SortChildren orders children by name for deterministic output, which
// keeps serialisation and test fixtures reproducible.
func (n *Node) SortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
	for _, c := range n.Children {
		c.SortChildren()
	}
}

// ChildByName returns the child named name, or nil.
func (n *Node) ChildByName(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ValidateUniqueChildNames checks the invariant that sibling names are
// unique under every directory node.
func (n *Node) ValidateUniqueChildNames() error {
	seen := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		if seen[c.Name] {
			return &DuplicateChildError{Path: n.Path, Name: c.Name}
		}
		seen[c.Name] = true
		if err := c.ValidateUniqueChildNames(); err != nil {
			return err
		}
	}
	return nil
}

// DuplicateChildError is returned when two siblings share a name.
type DuplicateChildError struct {
	Path string
	Name string
}

func (e *DuplicateChildError) Error() string {
	return "tree: duplicate child name " + e.Name + " under " + e.Path
}
