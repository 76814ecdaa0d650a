// Package server implements the accept loop that turns a listening
// socket into a stream of per-connection lounge sessions, one
// goroutine each.
package server

import (
	"context"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/lounge"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/wsconfig"
)

// Server accepts connections and dispatches each to its own lounge
// session against the configured set of SERVER-role workspaces.
type Server struct {
	listener   *transport.Listener
	workspaces map[string]*wsconfig.WorkspaceConfig
	registry   *lounge.Registry
	opts       lounge.Options
}

// New builds a Server bound to listener, serving every workspace in
// workspaces whose Role is RoleServer (CLIENT-role entries in the same
// config document describe this process's own outbound workspaces and
// are not served).
func New(listener *transport.Listener, workspaces []*wsconfig.WorkspaceConfig, opts lounge.Options) *Server {
	byName := make(map[string]*wsconfig.WorkspaceConfig, len(workspaces))
	for _, w := range workspaces {
		if w.Role == wsconfig.RoleServer {
			byName[w.Name] = w
		}
	}
	return &Server{
		listener:   listener,
		workspaces: byName,
		registry:   lounge.NewRegistry(),
		opts:       opts,
	}
}

// Serve accepts connections until ctx is cancelled or Accept fails.
// Each connection is handled in its own goroutine; Serve itself never
// blocks on a single session.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return errors.Wrap(err, "server: accept")
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn *transport.Conn) {
	logging.Infof(conn.RemoteAddr(), "connection accepted")
	sess := lounge.NewSession(conn, s.workspaces, s.registry, s.opts)
	if err := sess.Run(); err != nil {
		logging.Errorf(conn.RemoteAddr(), "session ended: %v", err)
		return
	}
	logging.Infof(conn.RemoteAddr(), "session closed cleanly")
}
