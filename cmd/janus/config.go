package main

import (
	"fmt"

	"github.com/janus-sync/janus/wsconfig"
)

// resolvedConfig is the merged view of either a loaded JSON document
// or a single workspace built directly from flags.
type resolvedConfig struct {
	Workspaces []*wsconfig.WorkspaceConfig
	Host       string
	Port       int
	SSL        *wsconfig.SSL
}

func loadConfig(role wsconfig.Role) (*resolvedConfig, error) {
	if flagConfigPath != "" {
		return loadConfigFile()
	}
	return configFromFlags(role)
}

func loadConfigFile() (*resolvedConfig, error) {
	doc, err := wsconfig.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	workspaces, err := doc.Resolve()
	if err != nil {
		return nil, err
	}
	return &resolvedConfig{
		Workspaces: workspaces,
		Host:       doc.Host,
		Port:       doc.Port,
		SSL:        doc.SSL,
	}, nil
}

func configFromFlags(role wsconfig.Role) (*resolvedConfig, error) {
	if flagWorkspace == "" {
		return nil, fmt.Errorf("--workspace is required when --config is not given")
	}
	if flagPath == "" {
		return nil, fmt.Errorf("--path is required when --config is not given")
	}

	var ssl *wsconfig.SSL
	if flagSSLCert != "" || flagSSLKey != "" {
		ssl = &wsconfig.SSL{Cert: flagSSLCert, Key: flagSSLKey}
	}

	ws := &wsconfig.WorkspaceConfig{
		Name:       flagWorkspace,
		LocalName:  flagWorkspace,
		RemoteName: flagWorkspace,
		Role:       role,
		Path:       flagPath,
		Host:       hostFlag(),
		Port:       int(flagPort),
		AESKey:     []byte(flagSecret),
		SSL:        ssl,
	}
	return &resolvedConfig{
		Workspaces: []*wsconfig.WorkspaceConfig{ws},
		Host:       hostFlag(),
		Port:       int(flagPort),
		SSL:        ssl,
	}, nil
}
