package tree

import (
	"bufio"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// rule is one compiled line of an ignore/protect list.
type rule struct {
	negate   bool
	anchored bool
	dirOnly  bool
	g        glob.Glob
	raw      string
}

// Matcher evaluates a compiled list of gitignore-like rules against
// relative paths. The same engine backs both the walker's ignore list
// and the server's protect list.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles patterns (one per line, as read from a config
// list) into a Matcher.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if err := m.addLine(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ParsePatterns splits a newline-delimited ignore file's text into
// non-blank, non-comment pattern lines.
func ParsePatterns(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (m *Matcher) addLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	r := rule{raw: trimmed}
	pat := trimmed

	if strings.HasPrefix(pat, "!") {
		r.negate = true
		pat = pat[1:]
	}
	if strings.HasPrefix(pat, "/") {
		r.anchored = true
		pat = pat[1:]
	}
	if strings.HasSuffix(pat, "/") && len(pat) > 1 {
		r.dirOnly = true
		pat = pat[:len(pat)-1]
	}
	if pat == "" {
		return errors.Errorf("tree: empty pattern after trimming %q", trimmed)
	}

	g, err := glob.Compile(pat, '/')
	if err != nil {
		return errors.Wrapf(err, "tree: bad ignore pattern %q", trimmed)
	}
	r.g = g
	m.rules = append(m.rules, r)
	return nil
}

// Match reports whether relPath (workspace-relative, '/'-separated, no
// leading slash) is matched by this rule list, applying later rules
// (including '!' negations) over earlier ones.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	matched := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if ruleMatches(r, relPath) {
			matched = !r.negate
		}
	}
	return matched
}

func ruleMatches(r rule, relPath string) bool {
	if r.anchored {
		return r.g.Match(relPath)
	}
	if r.g.Match(relPath) {
		return true
	}
	segments := strings.Split(relPath, "/")
	for i := 1; i < len(segments); i++ {
		if r.g.Match(strings.Join(segments[i:], "/")) {
			return true
		}
	}
	return false
}
