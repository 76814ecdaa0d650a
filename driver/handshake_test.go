package driver

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-sync/janus/protocol"
	"github.com/janus-sync/janus/transport"
)

func pipePair() (*transport.Conn, *transport.Conn) {
	a, b := net.Pipe()
	return transport.New(a), transport.New(b)
}

func TestClientHelloSucceedsWhenPeerEchoesVersion(t *testing.T) {
	client, peer := pipePair()
	defer client.Close()
	defer peer.Close()

	done := make(chan error, 1)
	go func() { done <- clientHello(client) }()

	msg, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	_, ok := msg.(*protocol.Hello)
	require.True(t, ok)
	protocol.Recycle(msg)

	require.NoError(t, protocol.WriteMessage(peer, &protocol.Hello{Versions: []uint64{protocol.ProtocolVersion}}))

	confirm, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	_, ok = confirm.(*protocol.Hello)
	assert.True(t, ok)
	protocol.Recycle(confirm)

	assert.NoError(t, <-done)
}

func TestClientAuthSucceedsOnEchoedChallengeWithNoKey(t *testing.T) {
	client, peer := pipePair()
	defer client.Close()
	defer peer.Close()

	done := make(chan error, 1)
	go func() { done <- clientAuth(client, "proj", nil) }()

	nameMsg, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	auth, ok := nameMsg.(*protocol.Auth)
	require.True(t, ok)
	assert.Equal(t, "proj", string(auth.Payload))
	protocol.Recycle(nameMsg)

	challenge := []byte("0123456789abcdef")
	require.NoError(t, protocol.WriteMessage(peer, &protocol.Auth{Payload: challenge}))

	respMsg, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	resp, ok := respMsg.(*protocol.Auth)
	require.True(t, ok)
	assert.Equal(t, challenge, resp.Payload)
	protocol.Recycle(respMsg)

	require.NoError(t, protocol.WriteMessage(peer, protocol.Success(nil)))
	assert.NoError(t, <-done)
}

func TestClientAuthReturnsWorkspaceLockedOnCode2(t *testing.T) {
	client, peer := pipePair()
	defer client.Close()
	defer peer.Close()

	done := make(chan error, 1)
	go func() { done <- clientAuth(client, "proj", nil) }()

	nameMsg, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	protocol.Recycle(nameMsg)

	require.NoError(t, protocol.WriteMessage(peer, &protocol.Auth{Payload: []byte("challenge")}))

	respMsg, err := protocol.ReadMessage(peer)
	require.NoError(t, err)
	protocol.Recycle(respMsg)

	require.NoError(t, protocol.WriteMessage(peer, protocol.Failure(2, "workspace locked by another connection")))

	err = <-done
	assert.ErrorIs(t, err, ErrWorkspaceLocked)
}
