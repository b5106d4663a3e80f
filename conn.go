package memcache

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	"github.com/quietbit/memcache/meta"
)

var ErrConnClosed = errors.New("memcache: connection closed")

// Conn is a single connection to a memcache server.
//
// A Conn is exclusively owned for the duration of each operation: exactly one
// logical request is outstanding at a time, and its response (including the
// quiet-mode sentinel, if any) is fully consumed before the next request is
// written. Conn is not safe for concurrent use; pools hand out connections
// one owner at a time.
//
// Aborting an in-flight operation (e.g. a context deadline firing mid-call)
// leaves the connection in an indeterminate state: a partially sent command
// or an unread response invalidates it. Callers discard the connection after
// any such failure instead of reusing it; meta.ShouldCloseConnection encodes
// that decision.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	closed  bool
}

// NewConn wraps an established network connection.
func NewConn(netConn net.Conn) *Conn {
	return &Conn{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		writer:  bufio.NewWriter(netConn),
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.netConn.Close()
}

// IsClosed returns whether the connection has been closed or invalidated.
func (c *Conn) IsClosed() bool {
	return c.closed
}

// RemoteAddr returns the address of the server this connection talks to.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Ping sends an mn command and waits for its MN response.
func (c *Conn) Ping(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, meta.NewNoOpRequest(), meta.ParseNoOpResponse)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if resp.Status != meta.StatusMN {
		return meta.ErrorForStatus(resp.Status)
	}
	return nil
}

// roundTrip writes one command (plus the quiet sentinel, when requested),
// flushes, and consumes the response with the given parse function.
//
// Validation errors from the encoder are returned before any byte reaches
// the wire. Transport errors invalidate the connection.
func (c *Conn) roundTrip(ctx context.Context, req *meta.Request, parse meta.ParseFunc) (*meta.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.closed {
		return nil, ErrConnClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.netConn.SetDeadline(deadline)
	} else {
		c.netConn.SetDeadline(time.Time{})
	}

	if err := meta.WriteRequest(c.writer, req); err != nil {
		// The encoder validates before writing, so a validation failure
		// leaves the connection untouched. Anything else is a write failure.
		if !meta.ShouldCloseConnection(err) {
			return nil, err
		}
		c.closed = true
		return nil, &meta.ConnectionError{Op: "write", Err: err}
	}

	if err := c.writer.Flush(); err != nil {
		c.closed = true
		return nil, &meta.ConnectionError{Op: "flush", Err: err}
	}

	resp, err := c.receive(parse, req.Quiet)
	if err != nil {
		c.closed = true
		return nil, err
	}
	return resp, nil
}

// receive reads the primary response and, under quiet mode, drives the read
// side until the sentinel is accounted for.
//
// Quiet mode suppresses the server's reply for "nothing to report" outcomes,
// so the first response read is either the primary one or the sentinel's MN:
//   - MN first: the primary reply was suppressed; the caller sees the MN and
//     treats the operation as a non-erroneous empty outcome.
//   - anything else first: the primary reply arrived and the sentinel's MN is
//     still pending; it is consumed and checked here, never surfaced.
//
// This keeps responses aligned with commands on the single half-duplex
// connection.
func (c *Conn) receive(parse meta.ParseFunc, quiet bool) (*meta.Response, error) {
	resp, err := parse(c.reader)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		// Legacy error line: the read stream position is uncertain, do not
		// try to drain the sentinel.
		return resp, nil
	}

	if quiet && resp.Status != meta.StatusMN {
		sentinel, err := meta.ParseNoOpResponse(c.reader)
		if err != nil {
			return nil, err
		}
		if sentinel.Error != nil {
			return nil, sentinel.Error
		}
		if sentinel.Status != meta.StatusMN {
			return nil, &meta.ParseError{Message: "expected MN after quiet command, got " + string(sentinel.Status)}
		}
	}

	return resp, nil
}
