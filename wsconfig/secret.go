package wsconfig

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ResolveSecret turns a config-file Secret descriptor into raw key
// bytes, covering the four secret.type variants.
func ResolveSecret(s Secret) ([]byte, error) {
	switch s.Type {
	case SecretString, "":
		return []byte(s.Value), nil
	case SecretBase64:
		b, err := base64.StdEncoding.DecodeString(s.Value)
		if err != nil {
			return nil, errors.Wrap(err, "wsconfig: decode base64 secret")
		}
		return b, nil
	case SecretFileString:
		b, err := os.ReadFile(s.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "wsconfig: read secret file %q", s.Value)
		}
		return []byte(strings.TrimRight(string(b), "\r\n")), nil
	case SecretFileBase64:
		raw, err := os.ReadFile(s.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "wsconfig: read secret file %q", s.Value)
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, errors.Wrapf(err, "wsconfig: decode base64 secret file %q", s.Value)
		}
		return b, nil
	default:
		return nil, errors.Errorf("wsconfig: unknown secret type %q", s.Type)
	}
}
