package certgen

import (
	"os"

	"github.com/pkg/errors"
)

// WriteFiles writes the bundle's cert and key PEM to certPath and
// keyPath respectively, creating them with 0600 permissions for the
// key.
func (b *Bundle) WriteFiles(certPath, keyPath string) error {
	if err := os.WriteFile(certPath, b.CertPEM, 0o644); err != nil {
		return errors.Wrapf(err, "certgen: write cert %q", certPath)
	}
	if err := os.WriteFile(keyPath, b.KeyPEM, 0o600); err != nil {
		return errors.Wrapf(err, "certgen: write key %q", keyPath)
	}
	return nil
}
