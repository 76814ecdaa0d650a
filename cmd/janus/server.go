package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/lounge"
	"github.com/janus-sync/janus/server"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/wsconfig"
)

func runServerCmd() error {
	cfg, err := loadConfig(wsconfig.RoleServer)
	if err != nil {
		return exitErr(1, err)
	}
	dangling, err := lounge.ParseDanglingPolicy(flagDangling)
	if err != nil {
		return exitErr(1, err)
	}

	var tlsConfig *tls.Config
	if cfg.SSL != nil && cfg.SSL.Cert != "" && cfg.SSL.Key != "" {
		cert, err := tls.LoadX509KeyPair(cfg.SSL.Cert, cfg.SSL.Key)
		if err != nil {
			return exitErr(1, err)
		}
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	} else {
		logging.Infof(nil, "no TLS certificate configured: listening in cleartext")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := transport.Listen("tcp", addr, tlsConfig)
	if err != nil {
		return exitErr(1, err)
	}
	defer listener.Close()
	logging.Infof(nil, "listening on %s", listener.Addr())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(listener, cfg.Workspaces, lounge.Options{Dangling: dangling})
	if err := srv.Serve(ctx); err != nil {
		return exitErr(1, err)
	}
	return nil
}
