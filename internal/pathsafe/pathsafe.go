// Package pathsafe implements the path-traversal check required of
// every deserialised tree, plan and archive entry: the resolved
// absolute path must remain inside the workspace root.
package pathsafe

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrEscapesRoot is returned when a relative path, once joined to and
// cleaned against its root, would resolve outside that root.
var ErrEscapesRoot = errors.New("pathsafe: path escapes workspace root")

// Resolve joins rel onto root, cleans the result, and verifies it is
// still inside root. It returns the safe absolute path on success.
func Resolve(root, rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "pathsafe: resolve root %q", root)
	}
	absRoot = filepath.Clean(absRoot)
	candidate := filepath.Clean(filepath.Join(absRoot, rel))
	if candidate != absRoot && !strings.HasPrefix(candidate, absRoot+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrEscapesRoot, "%q under %q", rel, root)
	}
	return candidate, nil
}

// ValidSegment reports whether a single path segment (a file or
// directory name, never a full path) is safe to use as-is: no
// separators, no "." or "..", not empty.
func ValidSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
