package plan

import "github.com/janus-sync/janus/tree"

// Build diffs local against remote (either may be nil, meaning an
// entirely absent workspace) and returns the top-level forest of
// SyncPlan nodes, applying the eight comparison rules. clockSkewMillis
// is remote minus local, bias-corrected from the clock probe.
func Build(local, remote *tree.Node, clockSkewMillis int64) []*Node {
	var localChildren, remoteChildren []*tree.Node
	if local != nil {
		localChildren = local.Children
	}
	if remote != nil {
		remoteChildren = remote.Children
	}
	return diffChildrenUnion(localChildren, remoteChildren, clockSkewMillis)
}

// participates reports whether t takes part in sync at all (rule 5:
// only FILE and DIRECTORY do; SYMLINK and OTHER are dropped silently).
func participates(t tree.Type) bool {
	return t == tree.File || t == tree.Directory
}

type childPair struct {
	local, remote *tree.Node
}

// diffChildrenUnion diffs two sibling sets by the union of their names.
func diffChildrenUnion(localChildren, remoteChildren []*tree.Node, clockSkewMillis int64) []*Node {
	byName := make(map[string]*childPair, len(localChildren)+len(remoteChildren))
	order := make([]string, 0, len(localChildren)+len(remoteChildren))
	get := func(name string) *childPair {
		p, ok := byName[name]
		if !ok {
			p = &childPair{}
			byName[name] = p
			order = append(order, name)
		}
		return p
	}
	for _, c := range localChildren {
		get(c.Name).local = c
	}
	for _, c := range remoteChildren {
		get(c.Name).remote = c
	}

	var out []*Node
	for _, name := range order {
		p := byName[name]
		out = append(out, diffPair(p.local, p.remote, clockSkewMillis)...)
	}
	return out
}

// diffPair diffs one named entry present on local, remote, or both.
// It returns zero, one, or two Nodes (rule 4 can emit both a delete
// and an upload for the same name).
func diffPair(local, remote *tree.Node, clockSkewMillis int64) []*Node {
	switch {
	case local == nil && remote == nil:
		// rule 1
		return nil

	case local == nil:
		// rule 2: only remote
		if !participates(remote.Type) {
			return nil
		}
		return []*Node{leaf(remote, DeleteRemote)}

	case remote == nil:
		// rule 3: only local
		if !participates(local.Type) {
			return nil
		}
		return []*Node{uploadSubtree(local)}

	case local.Type != remote.Type:
		// rule 4: present on both, different types
		var out []*Node
		if participates(remote.Type) {
			out = append(out, leaf(remote, DeleteRemote))
		}
		if participates(local.Type) {
			out = append(out, uploadSubtree(local))
		}
		return out

	case !participates(local.Type):
		// rule 5: same type on both, but it's a SYMLINK/OTHER
		return nil

	case local.Type == tree.File:
		// rules 6/7, including the identical-mtime tie-break (rule 6's
		// "<=" treats equal mtimes as not-newer, i.e. skip)
		if local.MtimeMs+clockSkewMillis <= remote.MtimeMs {
			return nil
		}
		return []*Node{leaf(local, Upload)}

	default:
		// rule 8: both DIRECTORY
		n := &Node{
			Name:     local.Name,
			FileType: tree.Directory,
			Path:     local.Path,
			Action:   None,
			Perm:     local.Perm,
		}
		n.Children = diffChildrenUnion(local.Children, remote.Children, clockSkewMillis)
		if len(n.Children) == 0 {
			return nil
		}
		return []*Node{n}
	}
}

// leaf builds an action node carrying n's identity but no children
// descent (used for DELETE_REMOTE, and for UPLOAD on a plain FILE).
func leaf(n *tree.Node, action Action) *Node {
	return &Node{
		Name:     n.Name,
		FileType: n.Type,
		Path:     n.Path,
		Action:   action,
		Size:     n.Size,
		Perm:     n.Perm,
	}
}

// uploadSubtree builds an UPLOAD node for n and, if n is a DIRECTORY,
// recursively for every participating descendant (rule 3: "for
// DIRECTORY, recurse into children (all as UPLOAD)").
func uploadSubtree(n *tree.Node) *Node {
	out := leaf(n, Upload)
	if n.Type != tree.Directory {
		return out
	}
	for _, c := range n.Children {
		if !participates(c.Type) {
			continue
		}
		out.Children = append(out.Children, uploadSubtree(c))
	}
	return out
}
