package memcache

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/quietbit/memcache/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnPing(t *testing.T) {
	conn, mock := newTestConn("MN\r\n")

	err := conn.Ping(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "mn\r\n", mock.GetWrittenRequest())
}

func TestConnPingUnexpectedStatus(t *testing.T) {
	conn, _ := newTestConn("HD\r\n")

	err := conn.Ping(t.Context())
	require.Error(t, err)
}

func TestConnClosedRejectsOperations(t *testing.T) {
	conn, _ := newTestConn("MN\r\n")
	require.NoError(t, conn.Close())
	assert.True(t, conn.IsClosed())

	err := conn.Ping(t.Context())
	require.ErrorIs(t, err, ErrConnClosed)
}

func TestConnCloseIdempotent(t *testing.T) {
	conn, _ := newTestConn()
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestConnCancelledContext(t *testing.T) {
	conn, mock := newTestConn("MN\r\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.MetaGet(ctx, "foo", false, "", nil)
	require.ErrorIs(t, err, context.Canceled)

	// Rejected before any byte reached the wire.
	assert.Empty(t, mock.GetWrittenRequest())
}

func TestConnTransportErrorInvalidatesConn(t *testing.T) {
	// Server closes the stream before answering.
	conn, _ := newTestConn()

	_, err := conn.MetaGet(t.Context(), "foo", false, "", []string{"v"})
	require.Error(t, err)
	require.ErrorIs(t, err, io.EOF)

	assert.True(t, conn.IsClosed())
	assert.True(t, meta.ShouldCloseConnection(err))
}

func TestConnDeadlineFromContext(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	conn := NewConn(client)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nothing reads the server side: the write or read blocks until the
	// deadline propagated from the context fires.
	_, err := conn.MetaGet(ctx, "foo", false, "", []string{"v"})
	require.Error(t, err)

	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected timeout, got %v", err)
	assert.True(t, conn.IsClosed())
}
