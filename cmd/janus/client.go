package main

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/janus-sync/janus/driver"
	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/wsconfig"
)

func runClientCmd() error {
	cfg, err := loadConfig(wsconfig.RoleClient)
	if err != nil {
		return exitErr(1, err)
	}
	ws := selectClientWorkspace(cfg.Workspaces)
	if ws == nil {
		return exitErr(1, fmt.Errorf("no CLIENT workspace found (check --workspace or --config)"))
	}

	var tlsConfig *tls.Config
	if ws.SSL != nil && ws.SSL.Cert != "" {
		tlsConfig, err = loadTrustedCert(ws.SSL.Cert)
		if err != nil {
			return exitErr(1, err)
		}
	} else {
		logging.Infof(nil, "no TLS certificate configured: connecting in cleartext")
	}

	addr := fmt.Sprintf("%s:%d", ws.Host, ws.Port)
	conn, err := transport.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return exitErr(1, err)
	}
	defer conn.Close()

	remoteName := ws.RemoteName
	if remoteName == "" {
		remoteName = ws.Name
	}
	result, err := driver.Run(conn, driver.Options{
		WorkspaceName: remoteName,
		LocalPath:     ws.Path,
		AESKey:        ws.AESKey,
		Ignore:        ws.Ignore,
	})
	if err != nil {
		if errors.Is(err, driver.ErrWorkspaceLocked) {
			return exitErr(2, err)
		}
		return exitErr(1, err)
	}

	logging.Infof(nil, "synced %d file(s), %d byte(s) in %s", result.FilesTransferred, result.BytesTransferred, result.Elapsed)
	return nil
}

func selectClientWorkspace(workspaces []*wsconfig.WorkspaceConfig) *wsconfig.WorkspaceConfig {
	for _, w := range workspaces {
		if w.Role != wsconfig.RoleClient {
			continue
		}
		if flagWorkspace == "" || w.Name == flagWorkspace {
			return w
		}
	}
	return nil
}
