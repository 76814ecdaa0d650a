package lounge

import "github.com/pkg/errors"

// DanglingPolicy governs what happens to a DELETE_REMOTE plan node
// that survives the protect-list check: the protect list always wins,
// but everything else is subject to one of these three policies.
type DanglingPolicy int

const (
	DanglingRemove DanglingPolicy = iota
	DanglingKeep
	DanglingPanic
)

func (p DanglingPolicy) String() string {
	switch p {
	case DanglingKeep:
		return "keep"
	case DanglingPanic:
		return "panic"
	default:
		return "remove"
	}
}

// ParseDanglingPolicy parses the --dangling flag value.
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch s {
	case "", "remove":
		return DanglingRemove, nil
	case "keep":
		return DanglingKeep, nil
	case "panic":
		return DanglingPanic, nil
	default:
		return DanglingRemove, errors.Errorf("lounge: unknown dangling policy %q", s)
	}
}
