package main

import (
	"fmt"

	"github.com/janus-sync/janus/certgen"
)

func runGenerateSSLKeys() error {
	bundle, err := certgen.GenerateSelfSigned()
	if err != nil {
		return exitErr(1, err)
	}

	if flagSSLCert == "" && flagSSLKey == "" {
		fmt.Print(string(bundle.CertPEM))
		fmt.Print(string(bundle.KeyPEM))
		return nil
	}
	if flagSSLCert == "" || flagSSLKey == "" {
		return exitErr(1, fmt.Errorf("--ssl-cert and --ssl-key must be given together"))
	}
	if err := bundle.WriteFiles(flagSSLCert, flagSSLKey); err != nil {
		return exitErr(1, err)
	}
	return nil
}
