package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-sync/janus/internal/pathsafe"
)

func sampleTree() *Node {
	return &Node{
		Type: Directory,
		Children: []*Node{
			{Type: File, Name: "hello.txt", Path: "hello.txt", Size: 3, MtimeMs: 1000, Perm: 0o644},
			{
				Type: Directory, Name: "sub", Path: "sub", Perm: 0o755,
				Children: []*Node{
					{Type: File, Name: "deep.bin", Path: "sub/deep.bin", Size: 9, MtimeMs: 2000, Perm: 0o600},
				},
			},
		},
	}
}

func TestTreeRoundTrip(t *testing.T) {
	root := t.TempDir()
	n := sampleTree()
	data := Encode(n)
	got, err := Decode(root, data)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestTreeRejectsDuplicateSiblingNames(t *testing.T) {
	root := t.TempDir()
	n := &Node{
		Type: Directory,
		Children: []*Node{
			{Type: File, Name: "dup", Path: "dup", Perm: 0o644},
			{Type: File, Name: "dup", Path: "dup", Perm: 0o644},
		},
	}
	data := Encode(n)
	_, err := Decode(root, data)
	require.Error(t, err)
	var dupErr *DuplicateChildError
	assert.ErrorAs(t, err, &dupErr)
}

func TestTreeRejectsEscapingName(t *testing.T) {
	root := t.TempDir()
	n := &Node{
		Type: Directory,
		Children: []*Node{
			{Type: File, Name: "..", Path: "..", Perm: 0o644},
		},
	}
	data := Encode(n)
	_, err := Decode(root, data)
	assert.Error(t, err)
}

func TestPathsafeResolveRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := pathsafe.Resolve(root, "../outside")
	assert.ErrorIs(t, err, pathsafe.ErrEscapesRoot)
}

func TestPathsafeResolveAllowsInside(t *testing.T) {
	root := t.TempDir()
	got, err := pathsafe.Resolve(root, "a/b/c.txt")
	require.NoError(t, err)
	assert.Contains(t, got, root)
}
