package lounge

import (
	"os"

	"github.com/pkg/errors"
)

// renameOver atomically replaces target with tmp, falling back to a
// non-atomic remove-then-rename when the platform or filesystem
// refuses an atomic rename over an existing file.
func renameOver(tmp, target string) error {
	if err := os.Rename(tmp, target); err == nil {
		return nil
	}
	if rmErr := os.Remove(target); rmErr != nil && !os.IsNotExist(rmErr) {
		os.Remove(tmp)
		return errors.Wrapf(rmErr, "lounge: remove existing %q before replace", target)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "lounge: replace %q", target)
	}
	return nil
}
