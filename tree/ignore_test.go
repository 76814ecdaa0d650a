package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherBasics(t *testing.T) {
	m, err := NewMatcher([]string{
		"# a comment",
		"",
		"*.log",
		"/anchored.txt",
		"build/",
		"!keep.log",
	})
	require.NoError(t, err)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"nested/debug.log", false, true},
		{"keep.log", false, false},
		{"nested/keep.log", false, false},
		{"anchored.txt", false, true},
		{"nested/anchored.txt", false, false},
		{"build", true, true},
		{"build", false, false},
		{"nested/build", true, true},
		{"readme.md", false, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, m.Match(c.path, c.isDir), "path=%s isDir=%v", c.path, c.isDir)
	}
}

func TestNilMatcherMatchesNothing(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Match("anything", false))
}
