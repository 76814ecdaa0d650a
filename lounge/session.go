// Package lounge implements the server-side per-connection session:
// the handshake (Hello, then challenge-response Auth), admission to a
// workspace via the per-(role,name) mutex, and the request dispatch
// loop that drives one bound connection to completion.
package lounge

import (
	"bytes"
	"crypto/rand"
	"sync"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/archive"
	"github.com/janus-sync/janus/internal/authcrypto"
	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/protocol"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/wsconfig"
)

// challengeSize is the byte length of the server's random Auth
// challenge; 16 bytes clears the "128+ bits" floor.
const challengeSize = 16

// Options configures behaviour that is a matter of server policy
// rather than wire protocol.
type Options struct {
	Dangling DanglingPolicy
}

// ErrAuthFailed is returned when the challenge-response round fails.
var ErrAuthFailed = errors.New("lounge: authentication failed")

// ErrWorkspaceLocked is returned when another connection already
// holds the admission slot for the requested workspace.
var ErrWorkspaceLocked = errors.New("lounge: workspace locked by another connection")

// Session is one accepted connection, bound to a workspace for its
// lifetime once the handshake succeeds.
type Session struct {
	conn       *transport.Conn
	workspaces map[string]*wsconfig.WorkspaceConfig
	registry   *Registry
	opts       Options

	ws      *wsconfig.WorkspaceConfig
	release func()
	pool    *archive.Pool

	mu       sync.Mutex
	fileAcks []protocol.FileAck
}

// NewSession builds a Session for an accepted connection. workspaces
// indexes every configured SERVER-role workspace by name.
func NewSession(conn *transport.Conn, workspaces map[string]*wsconfig.WorkspaceConfig, registry *Registry, opts Options) *Session {
	return &Session{
		conn:       conn,
		workspaces: workspaces,
		registry:   registry,
		opts:       opts,
	}
}

// Run drives the session through handshake and dispatch until Bye,
// an error, or the peer closing the connection. The connection is
// always closed and the workspace lock, if held, always released.
func (s *Session) Run() error {
	defer s.conn.Close()

	if err := s.runHello(); err != nil {
		return errors.Wrap(err, "lounge: hello")
	}
	if err := s.runAuth(); err != nil {
		return err
	}
	defer func() {
		if s.release != nil {
			s.release()
		}
	}()

	logging.Infof(s.conn.RemoteAddr(), "bound to workspace %q", s.ws.Name)
	return s.dispatch()
}

// runHello performs the three-message handshake: the client offers
// versions, the server echoes the one it accepts, the client sends a
// final confirming Hello.
func (s *Session) runHello() error {
	msg, err := protocol.ReadMessage(s.conn)
	if err != nil {
		return err
	}
	hello, ok := msg.(*protocol.Hello)
	if !ok {
		gotType := msg.MsgType()
		protocol.Recycle(msg)
		return errors.Errorf("lounge: expected Hello, got %s", gotType)
	}
	offers := hello.Offers(protocol.ProtocolVersion)
	protocol.Recycle(msg)
	if !offers {
		return errors.Errorf("lounge: client's first offered version is not %d", protocol.ProtocolVersion)
	}

	if err := protocol.WriteMessage(s.conn, &protocol.Hello{Versions: []uint64{protocol.ProtocolVersion}}); err != nil {
		return err
	}

	confirm, err := protocol.ReadMessage(s.conn)
	if err != nil {
		return err
	}
	defer protocol.Recycle(confirm)
	if _, ok := confirm.(*protocol.Hello); !ok {
		return errors.Errorf("lounge: expected confirming Hello, got %s", confirm.MsgType())
	}
	return nil
}

// runAuth performs the challenge-response handshake and, on success,
// admits the connection to its requested workspace. Unknown
// workspaces are carried all the way through a (guaranteed-failing)
// challenge round so an attacker can't distinguish "unknown workspace"
// from "wrong key" by timing or response shape.
func (s *Session) runAuth() error {
	msg, err := protocol.ReadMessage(s.conn)
	if err != nil {
		return err
	}
	authMsg, ok := msg.(*protocol.Auth)
	if !ok {
		gotType := msg.MsgType()
		protocol.Recycle(msg)
		return errors.Errorf("lounge: expected Auth, got %s", gotType)
	}
	name := string(authMsg.Payload)
	protocol.Recycle(msg)

	ws := s.workspaces[name]

	challenge := make([]byte, challengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return errors.Wrap(err, "lounge: generate challenge")
	}
	if err := protocol.WriteMessage(s.conn, &protocol.Auth{Payload: challenge}); err != nil {
		return err
	}

	respMsg, err := protocol.ReadMessage(s.conn)
	if err != nil {
		return err
	}
	respAuth, ok := respMsg.(*protocol.Auth)
	if !ok {
		gotType := respMsg.MsgType()
		protocol.Recycle(respMsg)
		return errors.Errorf("lounge: expected Auth response, got %s", gotType)
	}
	response := append([]byte(nil), respAuth.Payload...)
	protocol.Recycle(respMsg)

	if !s.challengeMatches(ws, challenge, response) {
		protocol.WriteMessage(s.conn, protocol.Failure(1, "authentication failed"))
		return ErrAuthFailed
	}

	release, ok := s.registry.TryLock(string(ws.Role), ws.Name)
	if !ok {
		protocol.WriteMessage(s.conn, protocol.Failure(2, "workspace locked by another connection"))
		return ErrWorkspaceLocked
	}
	s.release = release
	s.ws = ws
	return protocol.WriteMessage(s.conn, protocol.Success(nil))
}

func (s *Session) challengeMatches(ws *wsconfig.WorkspaceConfig, challenge, response []byte) bool {
	if ws == nil {
		return false
	}
	if len(ws.AESKey) == 0 {
		return bytes.Equal(response, challenge)
	}
	decrypted, err := authcrypto.DecryptChallenge(ws.AESKey, response)
	if err != nil {
		return false
	}
	return bytes.Equal(decrypted, challenge)
}
