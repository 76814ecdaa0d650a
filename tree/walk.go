package tree

import (
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/janus-sync/janus/internal/logging"
)

// wideDirThreshold is the number-of-children cutoff at or above which
// a directory's entries are walked concurrently rather than recursed
// into sequentially.
const wideDirThreshold = 16

// Walk describes root as a Node tree, applying ignore to prune
// subtrees before descending into them. Resulting paths are relative
// to root and use '/' separators regardless of platform.
func Walk(root string, ignore *Matcher) (*Node, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "tree: stat workspace root %q", root)
	}
	node := &Node{
		Type: Directory,
		Name: "",
		Path: "",
	}
	if !info.IsDir() {
		return nil, errors.Errorf("tree: workspace root %q is not a directory", root)
	}
	children, err := walkDir(root, "", ignore)
	if err != nil {
		return nil, err
	}
	node.Children = children
	node.MtimeMs = info.ModTime().UnixMilli()
	node.Perm = uint32(info.Mode().Perm())
	return node, nil
}

// walkDir lists absDir (whose workspace-relative path is relPath) and
// returns the Node for every surviving child, in parallel for wide
// directories.
func walkDir(absDir, relPath string, ignore *Matcher) ([]*Node, error) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, errors.Wrapf(err, "tree: read dir %q", absDir)
	}

	if len(entries) < wideDirThreshold {
		var out []*Node
		for _, e := range entries {
			n := describeEntry(absDir, relPath, e, ignore)
			if n != nil {
				out = append(out, n)
			}
		}
		return out, nil
	}

	results := make([]*Node, len(entries))
	var g errgroup.Group
	var mu sync.Mutex
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			n := describeEntry(absDir, relPath, e, ignore)
			mu.Lock()
			results[i] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // describeEntry never returns an error path; it logs and drops instead

	out := make([]*Node, 0, len(results))
	for _, n := range results {
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// describeEntry builds the Node for one directory entry, recursing
// into directories. Returns nil if ignore prunes the entry, or (with
// an error logged) if attribute reading fails — a single bad node
// never fails the parent walk.
func describeEntry(absDir, relParent string, e os.DirEntry, ignore *Matcher) *Node {
	name := e.Name()
	relPath := name
	if relParent != "" {
		relPath = path.Join(filepath.ToSlash(relParent), name)
	}

	info, err := e.Info()
	if err != nil {
		logging.Errorf(nil, "tree: dropping %q, could not read attributes: %v", relPath, err)
		return nil
	}

	isDir := info.IsDir()
	if ignore.Match(relPath, isDir) {
		return nil
	}

	n := &Node{
		Name:    name,
		Path:    relPath,
		MtimeMs: info.ModTime().UnixMilli(),
		Perm:    uint32(info.Mode().Perm()),
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		n.Type = Symlink
		return n
	case isDir:
		n.Type = Directory
		absChild := filepath.Join(absDir, name)
		children, err := walkDir(absChild, relPath, ignore)
		if err != nil {
			logging.Errorf(nil, "tree: dropping directory %q: %v", relPath, err)
			return nil
		}
		n.Children = children
		return n
	case info.Mode().IsRegular():
		n.Type = File
		n.Size = info.Size()
		return n
	default:
		n.Type = Other
		return n
	}
}
