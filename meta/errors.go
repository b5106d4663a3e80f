package meta

import (
	"errors"
	"fmt"
)

// Error types for meta protocol operations.
// These errors help clients determine appropriate error handling strategy,
// particularly regarding connection management (close vs. reuse).

// ProtocolError is returned when the server answers with a status outside the
// success set for the operation. It carries the status code verbatim.
//
// Connection handling: the connection is still aligned, it can be REUSED.
type ProtocolError struct {
	Status StatusType
}

func (e *ProtocolError) Error() string {
	return "memcache: unexpected status " + string(e.Status)
}

// Is reports whether target is a ProtocolError with the same status,
// so errors.Is(err, ErrCASConflict) matches any EX error.
func (e *ProtocolError) Is(target error) bool {
	pe, ok := target.(*ProtocolError)
	return ok && pe.Status == e.Status
}

// ShouldCloseConnection returns false - the response was well-formed.
func (e *ProtocolError) ShouldCloseConnection() bool {
	return false
}

// ErrCASConflict is returned by MetaDelete when the server answers EX: the
// item exists with a different CAS value than the one supplied. This is an
// optimistic-concurrency conflict, not a generic failure.
var ErrCASConflict = &ProtocolError{Status: StatusEX}

// ErrorForStatus converts a non-success status into a domain error.
// It is total: every status yields an error value carrying that status.
func ErrorForStatus(status StatusType) error {
	return &ProtocolError{Status: status}
}

// ClientError represents a CLIENT_ERROR response from memcached.
// When this error occurs, the connection MUST be closed as the protocol
// state may be corrupted: the server detected invalid client input and the
// parsing state is undefined.
//
// Common causes:
//   - Invalid flag syntax
//   - Size mismatch in data block
//   - Non-numeric value for arithmetic operations
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return "CLIENT_ERROR: " + e.Message
}

// ShouldCloseConnection returns true - client errors require closing connection
func (e *ClientError) ShouldCloseConnection() bool {
	return true
}

// ServerError represents a SERVER_ERROR response from memcached.
// The connection protocol state is still valid, but the operation failed due
// to server issues (out of memory, internal error).
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "SERVER_ERROR: " + e.Message
}

// ShouldCloseConnection returns false - server errors don't corrupt protocol state
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// GenericError represents a generic ERROR response from memcached,
// typically an unknown command or protocol violation.
type GenericError struct {
	Message string
}

func (e *GenericError) Error() string {
	return e.Message
}

// ShouldCloseConnection returns true - generic errors indicate protocol issues
func (e *GenericError) ShouldCloseConnection() bool {
	return true
}

// InvalidKeyError is returned when a key fails validation.
// The operation was rejected client-side before any bytes were written;
// the connection is still valid.
type InvalidKeyError struct {
	Message string
}

func (e *InvalidKeyError) Error() string {
	return e.Message
}

// InvalidOpaqueError is returned when an opaque token exceeds 32 bytes.
// The operation was rejected client-side before any bytes were written;
// the connection is still valid.
type InvalidOpaqueError struct {
	Message string
}

func (e *InvalidOpaqueError) Error() string {
	return e.Message
}

// ParseError represents a client-side parsing error: the client failed to
// parse the server response, which suggests either a protocol violation by
// the server or a bug in the client parser.
//
// Connection handling: CLOSE, the read stream position is uncertain.
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - parse errors indicate corrupted state
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps underlying I/O errors from connection operations.
// A transport error during a multi-step command leaves the connection state
// undefined: callers must discard the connection, never reuse it.
type ConnectionError struct {
	Op  string // Operation that failed (read, write, flush)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean the connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether an error requires discarding the
// connection it occurred on.
//
// Returns true for ClientError, GenericError, ParseError, ConnectionError and
// unknown error types. Returns false for nil, ProtocolError, ServerError and
// validation errors.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var ik *InvalidKeyError
	var io *InvalidOpaqueError
	if errors.As(err, &ik) || errors.As(err, &io) {
		// Validation failures never put bytes on the wire.
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close the connection
	return true
}
