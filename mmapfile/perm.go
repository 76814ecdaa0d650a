package mmapfile

import (
	"os"

	"github.com/pkg/errors"
)

// ApplyPerm chmods path to the low 9 POSIX permission bits carried on
// the wire as tree.Node.Perm / plan.Node.Perm. On POSIX hosts this is
// a direct application; on a non-POSIX host os.Chmod already does its
// own best-effort translation, so no extra mapping layer is needed
// here.
func ApplyPerm(path string, perm uint32) error {
	if err := os.Chmod(path, os.FileMode(perm&0o777)); err != nil {
		return errors.Wrapf(err, "mmapfile: chmod %q to %o", path, perm&0o777)
	}
	return nil
}
