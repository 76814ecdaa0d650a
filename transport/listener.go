package transport

import (
	"crypto/tls"
	"net"

	"github.com/pkg/errors"
)

// Listener accepts incoming connections, wrapping each in TLS when the
// server has a certificate and key configured.
type Listener struct {
	raw       net.Listener
	tlsConfig *tls.Config
}

// Listen binds addr and returns a Listener. tlsConfig may be nil for a
// cleartext listener; the caller logs a warning in that case, since it
// knows whether TLS was requested.
func Listen(network, addr string, tlsConfig *tls.Config) (*Listener, error) {
	raw, err := net.Listen(network, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: listen %s %s", network, addr)
	}
	var tc *tls.Config
	if tlsConfig != nil {
		tc = tlsConfig.Clone()
		tc.MinVersion = tls.VersionTLS12
	}
	return &Listener{raw: raw, tlsConfig: tc}, nil
}

// Accept blocks for the next inbound connection.
func (l *Listener) Accept() (*Conn, error) {
	raw, err := l.raw.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "transport: accept")
	}
	if l.tlsConfig != nil {
		raw = tls.Server(raw, l.tlsConfig)
	}
	return &Conn{raw: raw}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.raw.Addr()
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return errors.Wrap(l.raw.Close(), "transport: listener close")
}
