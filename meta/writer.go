package meta

import (
	"bufio"
	"strconv"
)

// WriteRequest serializes a Request to wire format and writes it to w.
//
// Format: <command> <key> [<size>] <flags>*\r\n[<data>\r\n]
//
//	For mg:  mg <key> <flags>*\r\n
//	For ms:  ms <key> <size> <flags>*\r\n<data>\r\n
//	For md:  md <key> <flags>*\r\n
//	For ma:  ma <key> [MD] <flags>*\r\n
//	For mn:  mn\r\n
//
// When req.Quiet is set, the mn sentinel command is appended right after the
// primary command (after the data block for ms), so the caller can always
// drive the read side to a response even when the server suppresses the
// primary reply.
//
// Key and opaque are validated before any byte is written: a validation
// failure never leaves a partial command in the writer.
//
// WriteRequest does not flush; the connection owns the flush boundary.
func WriteRequest(w *bufio.Writer, req *Request) error {
	// mn has no key, flags or payload
	if req.Command == CmdNoOp {
		w.WriteString(string(CmdNoOp))
		_, err := w.WriteString(CRLF)
		return err
	}

	if err := ValidateKey(req.Key, req.hasBase64Flag()); err != nil {
		return err
	}
	if err := ValidateOpaque(req.Opaque); err != nil {
		return err
	}

	w.WriteString(string(req.Command))
	w.WriteString(Space)
	w.WriteString(req.Key)

	if req.Command == CmdSet {
		w.WriteString(Space)
		w.WriteString(strconv.Itoa(len(req.Data)))
	}

	// Explicit arithmetic mode comes immediately after the key. The default
	// mode (increment) is never written.
	if req.Command == CmdArithmetic && req.Mode != "" && req.Mode != ModeIncrement {
		w.WriteString(Space)
		w.WriteByte(byte(FlagMode))
		w.WriteString(req.Mode)
	}

	writeNegotiatedFlags(w, req)

	w.WriteString(CRLF)

	if req.Command == CmdSet {
		if len(req.Data) > 0 {
			if _, err := w.Write(req.Data); err != nil {
				return err
			}
		}
		w.WriteString(CRLF)
	}

	if req.Quiet {
		w.WriteString(string(CmdNoOp))
		if _, err := w.WriteString(CRLF); err != nil {
			return err
		}
	}

	return nil
}

// writeNegotiatedFlags emits the flag suffix for a command, merging the typed
// parameters (opaque, delta, quiet) with the caller's raw flag tokens:
//
//   - O<opaque> is written first when an opaque is set, and wins over any
//     caller O flag.
//   - D<delta> is written for arithmetic commands when an explicit delta
//     other than 1 is set. A delta of 1 is the protocol default and is not
//     transmitted, but any explicit delta still suppresses caller D flags.
//   - Caller M and q flags are always dropped: the mode is implied by the
//     command, and quiet mode is controlled only by the typed parameter.
//   - Surviving caller flags keep their order.
//   - q is written last when quiet mode is requested.
//
// No flag is ever emitted twice.
func writeNegotiatedFlags(w *bufio.Writer, req *Request) {
	if req.Opaque != "" {
		w.WriteString(Space)
		w.WriteByte(byte(FlagOpaque))
		w.WriteString(req.Opaque)
	}

	if req.Command == CmdArithmetic && req.Delta != nil && *req.Delta != 1 {
		w.WriteString(Space)
		w.WriteByte(byte(FlagDelta))
		w.WriteString(strconv.FormatUint(*req.Delta, 10))
	}

	for _, flag := range req.MetaFlags {
		if suppressMetaFlag(flag, req) {
			continue
		}
		w.WriteString(Space)
		w.WriteString(flag)
	}

	if req.Quiet {
		w.WriteString(Space)
		w.WriteByte(byte(FlagQuiet))
	}
}

// suppressMetaFlag reports whether a caller-supplied flag token must be
// dropped because a typed parameter covers the same concept.
func suppressMetaFlag(flag string, req *Request) bool {
	if len(flag) == 0 {
		return true
	}
	switch FlagType(flag[0]) {
	case FlagMode, FlagQuiet:
		return true
	case FlagDelta:
		return req.Delta != nil
	case FlagOpaque:
		return req.Opaque != ""
	}
	return false
}
