package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// loadTrustedCert builds a client-side TLS config that trusts the
// single certificate at certPath, for the small fixed-deployment
// pinning model: no CA chain, no hostname check, just "is this the
// cert we were told to expect".
func loadTrustedCert(certPath string) (*tls.Config, error) {
	pemBytes, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read trusted certificate %q: %w", certPath, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, fmt.Errorf("no certificates found in %q", certPath)
	}
	return &tls.Config{RootCAs: pool}, nil
}
