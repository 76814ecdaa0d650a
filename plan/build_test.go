package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-sync/janus/tree"
)

func dir(name string, children ...*tree.Node) *tree.Node {
	return &tree.Node{Type: tree.Directory, Name: name, Path: name, Children: children}
}

func file(name string, mtime int64) *tree.Node {
	return &tree.Node{Type: tree.File, Name: name, Path: name, MtimeMs: mtime, Size: 5, Perm: 0o644}
}

func findByName(nodes []*Node, name string) *Node {
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func TestBuildEmptyBothSides(t *testing.T) {
	forest := Build(nil, nil, 0)
	assert.Empty(t, forest)
}

func TestBuildOnlyLocalUploadsRecursively(t *testing.T) {
	local := dir("", dir("sub", file("a.txt", 100)))
	forest := Build(local, nil, 0)
	sub := findByName(forest, "sub")
	require.NotNil(t, sub)
	assert.Equal(t, Upload, sub.Action)
	a := findByName(sub.Children, "a.txt")
	require.NotNil(t, a)
	assert.Equal(t, Upload, a.Action)
}

func TestBuildOnlyRemoteDeletesWithoutDescending(t *testing.T) {
	remote := dir("", dir("stale", file("x.txt", 1)))
	forest := Build(nil, remote, 0)
	stale := findByName(forest, "stale")
	require.NotNil(t, stale)
	assert.Equal(t, DeleteRemote, stale.Action)
	assert.Empty(t, stale.Children)
}

func TestBuildFileSkippedWhenRemoteNewerOrEqual(t *testing.T) {
	local := dir("", file("a.txt", 100))
	remote := dir("", file("a.txt", 100)) // identical mtimes: tie-break treats local as not newer
	forest := Build(local, remote, 0)
	assert.Nil(t, findByName(forest, "a.txt"))
}

func TestBuildFileUploadedWhenLocalNewer(t *testing.T) {
	local := dir("", file("a.txt", 200))
	remote := dir("", file("a.txt", 100))
	forest := Build(local, remote, 0)
	a := findByName(forest, "a.txt")
	require.NotNil(t, a)
	assert.Equal(t, Upload, a.Action)
}

func TestBuildClockSkewAppliedBeforeComparison(t *testing.T) {
	// local is 5s older than remote, but clock skew is +10s in the
	// server's favour, so local effectively looks newer and wins.
	local := dir("", file("a.txt", 1000))
	remote := dir("", file("a.txt", 6000))
	forest := Build(local, remote, 10000)
	a := findByName(forest, "a.txt")
	require.NotNil(t, a)
	assert.Equal(t, Upload, a.Action)
}

func TestBuildTypeMismatchEmitsBoth(t *testing.T) {
	local := dir("", file("x", 1))
	remote := dir("", dir("x"))
	forest := Build(local, remote, 0)
	var upload, del *Node
	for _, n := range forest {
		if n.Name != "x" {
			continue
		}
		switch n.Action {
		case Upload:
			upload = n
		case DeleteRemote:
			del = n
		}
	}
	require.NotNil(t, upload)
	require.NotNil(t, del)
	assert.Equal(t, tree.File, upload.FileType)
	assert.Equal(t, tree.Directory, del.FileType)
}

func TestBuildSymlinkAndOtherDropped(t *testing.T) {
	local := dir("", &tree.Node{Type: tree.Symlink, Name: "link", Path: "link"})
	forest := Build(local, nil, 0)
	assert.Nil(t, findByName(forest, "link"))
}

func TestBuildDirectoryPrunedWhenNoChanges(t *testing.T) {
	local := dir("", dir("sub", file("a.txt", 100)))
	remote := dir("", dir("sub", file("a.txt", 100)))
	forest := Build(local, remote, 0)
	assert.Empty(t, forest)
}

func TestPlanCodecRoundTrip(t *testing.T) {
	root := t.TempDir()
	n := &Node{
		Name: "", FileType: tree.Directory, Action: None,
		Children: []*Node{
			{Name: "a.txt", Path: "a.txt", FileType: tree.File, Action: Upload, Size: 3, Perm: 0o644},
		},
	}
	data := Encode(n)
	got, err := Decode(root, data)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestPlanCodecRejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	n := &Node{Name: "x", Path: "../escape", FileType: tree.File, Action: DeleteRemote}
	data := Encode(n)
	_, err := Decode(root, data)
	assert.Error(t, err)
}
