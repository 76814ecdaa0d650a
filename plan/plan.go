// Package plan builds and encodes the forest of actions produced by
// comparing a local and a remote tree.Node.
package plan

import "github.com/janus-sync/janus/tree"

// Action is what to do with a plan node.
type Action int

// Actions a plan node may carry.
const (
	None Action = iota
	Upload
	DeleteRemote
)

func (a Action) String() string {
	switch a {
	case Upload:
		return "UPLOAD"
	case DeleteRemote:
		return "DELETE_REMOTE"
	default:
		return "NONE"
	}
}

// Node is one entry of a sync plan: {name, file_type, path, action,
// children}. UPLOAD on a Directory means "ensure it exists"; UPLOAD on
// a File means "transfer bytes and metadata".
// DELETE_REMOTE on a Directory implies recursive deletion.
type Node struct {
	Name     string
	FileType tree.Type
	Path     string
	Action   Action
	Children []*Node

	// Size and Perm are carried through from the winning source node
	// (local for Upload, remote for DeleteRemote) so later stages
	// don't need to re-walk the original trees to act on the plan.
	Size int64
	Perm uint32
}

// IsEmpty reports whether this node and its whole subtree are no-ops.
func (n *Node) IsEmpty() bool {
	if n.Action != None {
		return false
	}
	for _, c := range n.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Walk calls fn for n and every descendant, depth first, pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
