package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-sync/janus/wsconfig"
)

func resetFlags() {
	flagConfigPath = ""
	flagWorkspace = ""
	flagPath = ""
	flagSecret = ""
	flagSSLCert = ""
	flagSSLKey = ""
	flagHost = ""
	flagIP = ""
	flagPort = 0
}

func TestConfigFromFlagsRequiresWorkspaceAndPath(t *testing.T) {
	resetFlags()
	defer resetFlags()

	_, err := configFromFlags(wsconfig.RoleClient)
	assert.Error(t, err)

	flagWorkspace = "proj"
	_, err = configFromFlags(wsconfig.RoleClient)
	assert.Error(t, err)
}

func TestConfigFromFlagsBuildsSingleWorkspace(t *testing.T) {
	resetFlags()
	defer resetFlags()

	flagWorkspace = "proj"
	flagPath = "/tmp/proj"
	flagHost = "example.org"
	flagPort = 9000
	flagSecret = "s3cret"

	cfg, err := configFromFlags(wsconfig.RoleClient)
	require.NoError(t, err)
	require.Len(t, cfg.Workspaces, 1)

	ws := cfg.Workspaces[0]
	assert.Equal(t, "proj", ws.Name)
	assert.Equal(t, wsconfig.RoleClient, ws.Role)
	assert.Equal(t, "/tmp/proj", ws.Path)
	assert.Equal(t, "example.org", ws.Host)
	assert.Equal(t, 9000, ws.Port)
	assert.Equal(t, []byte("s3cret"), ws.AESKey)
	assert.Nil(t, ws.SSL)
}

func TestConfigFromFlagsSetsSSLWhenEitherPathGiven(t *testing.T) {
	resetFlags()
	defer resetFlags()

	flagWorkspace = "proj"
	flagPath = "/tmp/proj"
	flagSSLCert = "/tmp/cert.pem"

	cfg, err := configFromFlags(wsconfig.RoleServer)
	require.NoError(t, err)
	require.NotNil(t, cfg.SSL)
	assert.Equal(t, "/tmp/cert.pem", cfg.SSL.Cert)
}

func TestHostFlagPrefersIP(t *testing.T) {
	resetFlags()
	defer resetFlags()

	flagHost = "host.example"
	assert.Equal(t, "host.example", hostFlag())

	flagIP = "10.0.0.1"
	assert.Equal(t, "10.0.0.1", hostFlag())
}
