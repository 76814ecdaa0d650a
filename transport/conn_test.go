package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleartextRoundTrip(t *testing.T) {
	l, err := Listen("tcp", "127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *Conn, 1)
	go func() {
		c, err := l.Accept()
		require.NoError(t, err)
		accepted <- c
	}()

	client, err := Dial("tcp", l.Addr().String(), nil)
	require.NoError(t, err)
	defer client.Close()

	server := <-accepted
	defer server.Close()

	require.NoError(t, client.WriteAll([]byte("hello")))
	buf := make([]byte, 5)
	require.NoError(t, server.ReadExact(buf))
	assert.Equal(t, "hello", string(buf))
}

func TestCloseIsIdempotent(t *testing.T) {
	l, err := Listen("tcp", "127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err == nil {
			c.Close()
		}
	}()

	client, err := Dial("tcp", l.Addr().String(), nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestReadExactDeadlineErrors(t *testing.T) {
	l, err := Listen("tcp", "127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *Conn, 1)
	go func() {
		c, err := l.Accept()
		require.NoError(t, err)
		accepted <- c
	}()

	client, err := Dial("tcp", l.Addr().String(), nil)
	require.NoError(t, err)
	defer client.Close()
	server := <-accepted
	defer server.Close()

	require.NoError(t, server.SetDeadline(time.Now().Add(20*time.Millisecond)))
	buf := make([]byte, 4)
	err = server.ReadExact(buf)
	assert.Error(t, err)
}
