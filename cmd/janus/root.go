package main

import (
	"errors"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	flagServer          bool
	flagClient          bool
	flagHost            string
	flagIP              string
	flagPort            uint16
	flagConfigPath      string
	flagWorkspace       string
	flagPath            string
	flagSecret          string
	flagSSLCert         string
	flagSSLKey          string
	flagDangling        string
	flagGenerateSSLKeys bool
	flagUsage           bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "janus",
		Short:         "Janus pushes the state of a local workspace to a remote one",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	flags := cmd.Flags()
	flags.BoolVar(&flagServer, "server", false, "run as the server accepting incoming syncs")
	flags.BoolVar(&flagClient, "client", false, "run as the client pushing a local workspace")
	flags.StringVar(&flagHost, "host", "", "remote host to dial (client) or bind address (server)")
	flags.StringVar(&flagIP, "ip", "", "alias of --host")
	flags.Uint16Var(&flagPort, "port", 0, "TCP port")
	flags.StringVar(&flagConfigPath, "config", "", "path to a JSON configuration file")
	flags.StringVar(&flagWorkspace, "workspace", "", "workspace name, when not using --config")
	flags.StringVar(&flagPath, "path", "", "local workspace directory, when not using --config")
	flags.StringVar(&flagSecret, "secret", "", "shared AES key as UTF-8 text, when not using --config")
	flags.StringVar(&flagSSLCert, "ssl-cert", "", "TLS certificate path")
	flags.StringVar(&flagSSLKey, "ssl-key", "", "TLS private key path")
	flags.StringVar(&flagDangling, "dangling", "remove", "server deletion policy outside the protect list: remove|keep|panic")
	flags.BoolVar(&flagGenerateSSLKeys, "generate-ssl-keys", false, "generate a self-signed certificate and exit")
	flags.BoolVar(&flagUsage, "usage", false, "print usage and exit")

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	if flagUsage {
		return cmd.Usage()
	}
	if flagGenerateSSLKeys {
		return runGenerateSSLKeys()
	}

	switch {
	case flagServer && flagClient:
		return exitErr(1, errors.New("--server and --client are mutually exclusive"))
	case flagServer:
		return runServerCmd()
	case flagClient:
		return runClientCmd()
	default:
		return exitErr(1, errors.New("one of --server or --client is required"))
	}
}

func hostFlag() string {
	if flagIP != "" {
		return flagIP
	}
	return flagHost
}
