package meta

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

// ParseFunc consumes one response from the connection's read stream and
// yields its structured form. One parse function exists per verb family.
type ParseFunc func(r *bufio.Reader) (*Response, error)

// Per-verb-family parse functions. The meta protocol uses one response
// grammar for all commands, so these share a core; they exist so each
// operation names the grammar it expects on its read path.

// ParseGetResponse parses a response to an mg command.
func ParseGetResponse(r *bufio.Reader) (*Response, error) { return readResponse(r) }

// ParseSetResponse parses a response to an ms command.
func ParseSetResponse(r *bufio.Reader) (*Response, error) { return readResponse(r) }

// ParseDeleteResponse parses a response to an md command.
func ParseDeleteResponse(r *bufio.Reader) (*Response, error) { return readResponse(r) }

// ParseArithmeticResponse parses a response to an ma command.
func ParseArithmeticResponse(r *bufio.Reader) (*Response, error) { return readResponse(r) }

// ParseNoOpResponse parses the MN response to the mn sentinel.
func ParseNoOpResponse(r *bufio.Reader) (*Response, error) { return readResponse(r) }

// Pre-allocated byte slices for comparisons (avoid allocation in hot path)
var (
	crlfBytes         = []byte(CRLF)
	errorGenericBytes = []byte(ErrorGeneric)
	clientErrorPrefix = []byte(ErrorClientPrefix + " ")
	serverErrorPrefix = []byte(ErrorServerPrefix + " ")
)

// readResponse reads and parses a single response from r.
// Response format: <status> [<size>] [<flags>*]\r\n[<data>\r\n]
//
// Protocol errors (CLIENT_ERROR, SERVER_ERROR, ERROR) from the server are
// returned in Response.Error, not as a Go error. The caller should check
// Response.Error and use ShouldCloseConnection to decide connection handling.
//
// Go errors indicate I/O or parsing failures:
//   - io.EOF: connection closed
//   - ParseError: malformed response, connection should be closed
//   - other I/O errors: connection issues, connection should be closed
func readResponse(r *bufio.Reader) (*Response, error) {
	// ReadSlice returns a slice into the buffer (zero allocation); fall back
	// to ReadBytes for oversized lines.
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		line, err = r.ReadBytes('\n')
	}
	if err != nil {
		return nil, err
	}

	line = bytes.TrimSuffix(line, crlfBytes)

	// Legacy error lines come before the meta grammar
	if bytes.HasPrefix(line, clientErrorPrefix) {
		return &Response{Error: &ClientError{Message: string(line[len(clientErrorPrefix):])}}, nil
	}
	if bytes.HasPrefix(line, serverErrorPrefix) {
		return &Response{Error: &ServerError{Message: string(line[len(serverErrorPrefix):])}}, nil
	}
	if bytes.Equal(line, errorGenericBytes) {
		return &Response{Error: &GenericError{Message: ErrorGeneric}}, nil
	}

	if len(line) < 2 {
		return nil, &ParseError{Message: "short response line"}
	}

	statusEnd := bytes.IndexByte(line, ' ')
	if statusEnd == -1 {
		statusEnd = len(line)
	}

	resp := &Response{
		Status: StatusType(line[:statusEnd]),
	}

	// MN carries no flags or data
	if resp.Status == StatusMN {
		return resp, nil
	}

	pos := statusEnd

	// VA carries the data size as the second field
	var dataSize int
	if resp.Status == StatusVA {
		for pos < len(line) && line[pos] == ' ' {
			pos++
		}

		sizeEnd := bytes.IndexByte(line[pos:], ' ')
		var sizeBytes []byte
		if sizeEnd == -1 {
			sizeBytes = line[pos:]
			pos = len(line)
		} else {
			sizeBytes = line[pos : pos+sizeEnd]
			pos += sizeEnd
		}

		if len(sizeBytes) == 0 {
			return nil, &ParseError{Message: "VA response missing size"}
		}

		dataSize, err = strconv.Atoi(string(sizeBytes))
		if err != nil {
			return nil, &ParseError{Message: "invalid size in VA response", Err: err}
		}
		if dataSize < 0 {
			return nil, &ParseError{Message: "negative size in VA response"}
		}
	}

	// Remaining fields are flags
	for pos < len(line) {
		for pos < len(line) && line[pos] == ' ' {
			pos++
		}
		if pos >= len(line) {
			break
		}

		flagEnd := bytes.IndexByte(line[pos:], ' ')
		var flagBytes []byte
		if flagEnd == -1 {
			flagBytes = line[pos:]
			pos = len(line)
		} else {
			flagBytes = line[pos : pos+flagEnd]
			pos += flagEnd
		}

		if len(flagBytes) == 0 {
			continue
		}

		flag := Flag{Type: FlagType(flagBytes[0])}
		if len(flagBytes) > 1 {
			flag.Token = string(flagBytes[1:])
		}
		resp.Flags = append(resp.Flags, flag)
	}

	// VA responses carry one returned record: the data block plus the flags
	// from the status line.
	if resp.Status == StatusVA {
		// Read data + CRLF in a single read
		data := make([]byte, dataSize+2)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, &ParseError{Message: "failed to read data block", Err: err}
		}
		if !bytes.HasSuffix(data, crlfBytes) {
			return nil, &ParseError{Message: "invalid data block terminator"}
		}

		resp.Values = []Value{{
			Data:  data[:dataSize],
			Flags: resp.Flags,
		}}
	}

	return resp, nil
}
