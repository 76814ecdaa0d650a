// Package certgen generates the self-signed Ed25519 certificate pair
// Janus uses when TLS is enabled but no externally issued certificate
// is supplied.
package certgen

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// CommonName is stamped on every generated certificate.
const CommonName = "JanusSync"

// ValidityYears is the absurdly long lifetime, in calendar years, given
// to a self-signed pair meant to outlive any plausible deployment. It is
// applied with time.Time.AddDate because a time.Duration cannot hold
// more than about 292 years.
const ValidityYears = 1000

// Bundle holds a generated certificate and its private key, both PEM
// encoded, plus the parsed tls.Certificate ready to hand to
// crypto/tls.
type Bundle struct {
	CertPEM []byte
	KeyPEM  []byte
	TLS     tls.Certificate
}

// GenerateSelfSigned produces one self-signed Ed25519 certificate
// (CA == leaf, since Janus's trust model is cert pinning rather than
// chain validation: hostname verification is disabled, and pinning
// the leaf certificate is sufficient for the small deployment scope
// this targets).
func GenerateSelfSigned() (*Bundle, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "certgen: generate key")
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, errors.Wrap(err, "certgen: serial number")
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: CommonName},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.AddDate(ValidityYears, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		IsCA:                  true,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
	if err != nil {
		return nil, errors.Wrap(err, "certgen: create certificate")
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, errors.Wrap(err, "certgen: marshal key")
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "certgen: build tls.Certificate")
	}

	return &Bundle{CertPEM: certPEM, KeyPEM: keyPEM, TLS: tlsCert}, nil
}
