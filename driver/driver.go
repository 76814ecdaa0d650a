// Package driver implements the client side of one synchronisation
// run: handshake, parallel clock-probe/tree-fetch/local-walk, plan
// build and commit, upload, and ack drain.
package driver

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/janus-sync/janus/internal/authcrypto"
	"github.com/janus-sync/janus/plan"
	"github.com/janus-sync/janus/protocol"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/tree"
)

// ErrWorkspaceLocked is returned when the server reports that another
// connection already holds the requested workspace.
var ErrWorkspaceLocked = errors.New("driver: workspace locked by another client")

// Options configures one synchronisation run.
type Options struct {
	WorkspaceName     string
	LocalPath         string
	AESKey            []byte
	Ignore            []string
	AckDrainThreshold int // ConfirmFiles is issued once pending acks exceed this count
}

// Result summarises one completed run for reporting to the operator.
type Result struct {
	Elapsed          time.Duration
	BytesTransferred int64
	FilesTransferred int
}

// Run drives conn through a full synchronisation pass and returns a
// summary. Any error aborts the run; the caller is responsible for
// closing conn afterwards.
func Run(conn *transport.Conn, opts Options) (*Result, error) {
	start := time.Now()

	if opts.AckDrainThreshold <= 0 {
		opts.AckDrainThreshold = 256
	}

	if err := clientHello(conn); err != nil {
		return nil, errors.Wrap(err, "driver: hello")
	}
	if err := clientAuth(conn, opts.WorkspaceName, opts.AESKey); err != nil {
		return nil, err
	}

	ignoreM, err := tree.NewMatcher(opts.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, "driver: compile ignore rules")
	}

	var skewMillis int64
	var remoteTree, localTree *tree.Node

	var g errgroup.Group
	g.Go(func() error {
		skew, err := probeClockSkew(conn)
		if err != nil {
			return errors.Wrap(err, "driver: clock probe")
		}
		skewMillis = skew
		rt, err := fetchRemoteTree(conn, opts.LocalPath)
		if err != nil {
			return errors.Wrap(err, "driver: fetch remote tree")
		}
		remoteTree = rt
		return nil
	})
	g.Go(func() error {
		lt, err := tree.Walk(opts.LocalPath, ignoreM)
		if err != nil {
			return errors.Wrap(err, "driver: walk local tree")
		}
		localTree = lt
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plans := plan.Build(localTree, remoteTree, skewMillis)

	if err := commitSyncPlan(conn, plans); err != nil {
		return nil, errors.Wrap(err, "driver: commit sync plan")
	}

	res := &Result{}
	u := &uploader{conn: conn, opts: opts, res: res}
	if err := u.run(plans); err != nil {
		return nil, errors.Wrap(err, "driver: upload")
	}
	if err := u.drainAll(); err != nil {
		return nil, errors.Wrap(err, "driver: drain acks")
	}

	if err := clientBye(conn); err != nil {
		return nil, errors.Wrap(err, "driver: bye")
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func clientHello(conn *transport.Conn) error {
	if err := protocol.WriteMessage(conn, &protocol.Hello{Versions: []uint64{protocol.ProtocolVersion}}); err != nil {
		return err
	}
	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return err
	}
	hello, ok := msg.(*protocol.Hello)
	if !ok {
		gotType := msg.MsgType()
		protocol.Recycle(msg)
		return errors.Errorf("driver: expected Hello, got %s", gotType)
	}
	offers := hello.Offers(protocol.ProtocolVersion)
	protocol.Recycle(msg)
	if !offers {
		return errors.Errorf("driver: server does not support protocol version %d", protocol.ProtocolVersion)
	}
	return protocol.WriteMessage(conn, &protocol.Hello{Versions: []uint64{protocol.ProtocolVersion}})
}

func clientAuth(conn *transport.Conn, workspaceName string, key []byte) error {
	if err := protocol.WriteMessage(conn, &protocol.Auth{Payload: []byte(workspaceName)}); err != nil {
		return err
	}

	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return err
	}
	challengeMsg, ok := msg.(*protocol.Auth)
	if !ok {
		gotType := msg.MsgType()
		protocol.Recycle(msg)
		return errors.Errorf("driver: expected Auth challenge, got %s", gotType)
	}
	challenge := append([]byte(nil), challengeMsg.Payload...)
	protocol.Recycle(msg)

	response := challenge
	if len(key) > 0 {
		enc, err := authcrypto.EncryptChallenge(key, challenge)
		if err != nil {
			return errors.Wrap(err, "driver: encrypt challenge")
		}
		response = enc
	}
	if err := protocol.WriteMessage(conn, &protocol.Auth{Payload: response}); err != nil {
		return err
	}

	respMsg, err := protocol.ReadMessage(conn)
	if err != nil {
		return err
	}
	defer protocol.Recycle(respMsg)
	resp, ok := respMsg.(*protocol.CommonResponse)
	if !ok {
		return errors.Errorf("driver: expected CommonResponse, got %s", respMsg.MsgType())
	}
	if resp.Code == 2 {
		return ErrWorkspaceLocked
	}
	if !resp.OK() {
		return errors.Errorf("driver: authentication rejected: %s", resp.Data)
	}
	return nil
}

func probeClockSkew(conn *transport.Conn) (int64, error) {
	sent := time.Now()
	if err := protocol.WriteMessage(conn, &protocol.GetSystemTimeMillis{}); err != nil {
		return 0, err
	}
	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return 0, err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok || !resp.OK() {
		return 0, errors.New("driver: GetSystemTimeMillis failed")
	}
	if len(resp.Data) != 8 {
		return 0, errors.New("driver: malformed clock response")
	}
	rtt := time.Since(sent)
	serverMillis := int64(binary.BigEndian.Uint64(resp.Data))
	localMillis := sent.UnixMilli()
	return serverMillis - localMillis - rtt.Milliseconds()/2, nil
}

func fetchRemoteTree(conn *transport.Conn, localRoot string) (*tree.Node, error) {
	if err := protocol.WriteMessage(conn, &protocol.FetchFileTree{}); err != nil {
		return nil, err
	}
	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return nil, err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok {
		return nil, errors.Errorf("driver: expected CommonResponse, got %s", msg.MsgType())
	}
	if !resp.OK() {
		return nil, errors.Errorf("driver: fetch remote tree: %s", resp.Data)
	}
	return tree.Decode(localRoot, resp.Data)
}

func commitSyncPlan(conn *transport.Conn, nodes []*plan.Node) error {
	subtrees := make([][]byte, len(nodes))
	for i, n := range nodes {
		subtrees[i] = plan.Encode(n)
	}
	if err := protocol.WriteMessage(conn, &protocol.CommitSyncPlan{Subtrees: subtrees}); err != nil {
		return err
	}
	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok {
		return errors.Errorf("driver: expected CommonResponse, got %s", msg.MsgType())
	}
	if !resp.OK() {
		return errors.Errorf("driver: commit sync plan: %s", resp.Data)
	}
	return nil
}

func clientBye(conn *transport.Conn) error {
	if err := protocol.WriteMessage(conn, &protocol.Bye{}); err != nil {
		return err
	}
	msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return err
	}
	protocol.Recycle(msg)
	return nil
}
