package meta

// Request represents one meta protocol command to encode.
//
// The command set is closed: mg, ms, md, ma (increment or decrement via
// Mode), and mn. One encoder, WriteRequest, branches on the variant.
//
// Typed parameters take precedence over raw MetaFlags expressing the same
// concept, see WriteRequest for the exact filtering rules.
type Request struct {
	// Command is the 2-character command code: mg, ms, md, ma, mn
	Command CmdType

	// Key is the cache key (1-250 bytes, no whitespace unless base64-encoded).
	// Empty for mn.
	Key string

	// Data is the value to store (ms only).
	// Size on the wire is derived from len(Data).
	Data []byte

	// Mode is the arithmetic mode token (ma only). Empty means the protocol
	// default (increment), which is never written. ModeDecrement writes MD
	// immediately after the key.
	Mode string

	// Opaque is the correlation token, echoed back by the server (max 32
	// bytes). Empty means no opaque. Takes precedence over any caller O flag.
	Opaque string

	// Delta is the arithmetic step (ma only). nil means the protocol default
	// of 1. A delta of 1 is never written; any non-nil delta suppresses
	// caller D flags, even an explicit 1.
	Delta *uint64

	// Quiet requests quiet mode: the q flag is appended last, and the mn
	// sentinel command follows the primary command on the wire.
	Quiet bool

	// MetaFlags are caller-supplied raw flag tokens (e.g. "v", "T60",
	// "N30"). They are emitted in order, after the typed flags, minus the
	// ones suppressed by the precedence rules.
	MetaFlags []string
}

// NewGetRequest creates an mg request for the given key.
func NewGetRequest(key string) *Request {
	return &Request{Command: CmdGet, Key: key}
}

// NewSetRequest creates an ms request for the given key and payload.
func NewSetRequest(key string, data []byte) *Request {
	return &Request{Command: CmdSet, Key: key, Data: data}
}

// NewDeleteRequest creates an md request for the given key.
func NewDeleteRequest(key string) *Request {
	return &Request{Command: CmdDelete, Key: key}
}

// NewIncrementRequest creates an ma request in the default (increment) mode.
func NewIncrementRequest(key string) *Request {
	return &Request{Command: CmdArithmetic, Key: key}
}

// NewDecrementRequest creates an ma request in decrement mode.
func NewDecrementRequest(key string) *Request {
	return &Request{Command: CmdArithmetic, Key: key, Mode: ModeDecrement}
}

// NewNoOpRequest creates an mn request.
func NewNoOpRequest() *Request {
	return &Request{Command: CmdNoOp}
}

// WithOpaque sets the opaque correlation token.
func (r *Request) WithOpaque(opaque string) *Request {
	r.Opaque = opaque
	return r
}

// WithDelta sets an explicit arithmetic delta.
func (r *Request) WithDelta(delta uint64) *Request {
	r.Delta = &delta
	return r
}

// WithQuiet enables quiet mode.
func (r *Request) WithQuiet() *Request {
	r.Quiet = true
	return r
}

// WithMetaFlags sets the caller-supplied raw flag tokens.
func (r *Request) WithMetaFlags(flags ...string) *Request {
	r.MetaFlags = flags
	return r
}

// hasBase64Flag reports whether the caller requested base64 key handling.
func (r *Request) hasBase64Flag() bool {
	for _, flag := range r.MetaFlags {
		if len(flag) > 0 && flag[0] == byte(FlagBase64Key) {
			return true
		}
	}
	return false
}
