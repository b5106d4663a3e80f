package meta

// CmdType represents a meta protocol command (2 characters).
type CmdType string

// FlagType represents a single-character flag identifier.
type FlagType byte

// StatusType represents a response status code (2 characters).
type StatusType string

// Protocol delimiters
const (
	// CRLF is the line terminator for the memcached protocol
	CRLF = "\r\n"

	// Space separates command tokens
	Space = " "
)

// Command codes (2 characters)
const (
	// CmdGet retrieves item data and metadata from cache.
	//
	// Wire format: mg <key> <flags>*\r\n
	//
	// Response statuses:
	//   - VA <size>: Hit with value (when v flag used)
	//   - HD: Hit without value
	//   - EN: Miss
	CmdGet CmdType = "mg"

	// CmdSet stores data in cache.
	//
	// Wire format: ms <key> <size> <flags>*\r\n<data>\r\n
	//
	// Response statuses:
	//   - HD: Stored successfully
	//   - NS: Not stored (mode conditions not met)
	//   - EX: CAS mismatch
	CmdSet CmdType = "ms"

	// CmdDelete deletes or invalidates items.
	//
	// Wire format: md <key> <flags>*\r\n
	//
	// Response statuses:
	//   - HD: Deleted successfully
	//   - NF: Key not found
	//   - EX: CAS mismatch
	CmdDelete CmdType = "md"

	// CmdArithmetic performs atomic increment/decrement operations.
	//
	// Wire format: ma <key> <flags>*\r\n
	//
	// Increment is the protocol default and is never written explicitly;
	// decrement is selected with the MD mode flag.
	//
	// Response statuses:
	//   - VA <size>: Success with value (when v flag used)
	//   - HD: Success without value
	//   - NF: Key not found (and no auto-create)
	CmdArithmetic CmdType = "ma"

	// CmdNoOp returns a static MN response, used as the synchronization
	// sentinel after quiet-mode commands.
	//
	// Wire format: mn\r\n
	CmdNoOp CmdType = "mn"
)

// Response status codes (2 characters)
const (
	// StatusHD indicates success with no value data returned (Header/Stored)
	StatusHD StatusType = "HD"

	// StatusVA indicates success with value data following (Value)
	StatusVA StatusType = "VA"

	// StatusEN indicates key not found - miss (End/Not Found)
	StatusEN StatusType = "EN"

	// StatusNF indicates key not found for operations requiring an existing key
	StatusNF StatusType = "NF"

	// StatusNS indicates item was not stored (Not Stored)
	StatusNS StatusType = "NS"

	// StatusEX indicates CAS mismatch - item was modified (Exists)
	StatusEX StatusType = "EX"

	// StatusMN is the response to the mn command (Meta No-op)
	StatusMN StatusType = "MN"
)

// Non-meta error responses (legacy protocol compatibility)
const (
	// ErrorGeneric is returned for unknown command or generic errors
	ErrorGeneric = "ERROR"

	// ErrorClientPrefix indicates client sent invalid data.
	// The connection should be closed after this error as protocol state
	// may be corrupted.
	ErrorClientPrefix = "CLIENT_ERROR"

	// ErrorServerPrefix indicates a server-side error
	ErrorServerPrefix = "SERVER_ERROR"
)

// Request flags (single character, optionally followed by token)

// Universal flags (all commands)
const (
	// FlagBase64Key indicates key is base64-encoded
	FlagBase64Key FlagType = 'b'

	// FlagReturnKey returns the key in response
	FlagReturnKey FlagType = 'k'

	// FlagOpaque is followed by token (max 32 bytes) for request matching
	// Format: O<token>
	FlagOpaque FlagType = 'O'

	// FlagQuiet suppresses nominal responses (HD, EN, NF).
	// Errors are still returned.
	FlagQuiet FlagType = 'q'
)

// Metadata retrieval flags (mg, ma)
const (
	// FlagReturnCAS returns the CAS value in response
	FlagReturnCAS FlagType = 'c'

	// FlagReturnClientFlags returns the client flags (uint32) in response
	FlagReturnClientFlags FlagType = 'f'

	// FlagReturnSize returns the value size in bytes
	FlagReturnSize FlagType = 's'

	// FlagReturnTTL returns the TTL remaining in seconds (-1 for infinite)
	FlagReturnTTL FlagType = 't'

	// FlagReturnValue returns the item value in data block.
	// Response changes from HD to VA <size>.
	FlagReturnValue FlagType = 'v'

	// FlagReturnHit returns whether item has been hit before (0 or 1)
	FlagReturnHit FlagType = 'h'

	// FlagReturnLastAccess returns time since last access in seconds
	FlagReturnLastAccess FlagType = 'l'
)

// Modification flags
const (
	// FlagCAS is followed by uint64 token for compare-and-swap
	// Format: C<cas_value>
	FlagCAS FlagType = 'C'

	// FlagTTL is followed by int32 token for TTL in seconds
	// Format: T<seconds>
	FlagTTL FlagType = 'T'

	// FlagClientFlags is followed by uint32 token for client flags
	// Format: F<flags>
	FlagClientFlags FlagType = 'F'

	// FlagMode is followed by a mode token
	// Format: M<mode>
	FlagMode FlagType = 'M'

	// FlagInvalidate marks item as stale instead of storing/deleting
	FlagInvalidate FlagType = 'I'

	// FlagVivify is followed by seconds token for TTL
	// Format: N<seconds>
	// Creates stub item on miss, returns W flag
	FlagVivify FlagType = 'N'
)

// Meta arithmetic specific flags
const (
	// FlagDelta is followed by uint64 token for increment/decrement amount
	// Format: D<delta>
	// Default: 1
	FlagDelta FlagType = 'D'

	// FlagInitialValue is followed by uint64 token for initial value
	// Format: J<initial>
	FlagInitialValue FlagType = 'J'
)

// Arithmetic modes (used with FlagMode in ma command)
const (
	// ModeIncrement increments the value (protocol default, never written)
	ModeIncrement = "I"

	// ModeDecrement decrements the value (stops at 0, no underflow)
	ModeDecrement = "D"
)

// Response-only flags (set by the server)
const (
	// FlagWin indicates client has exclusive right to recache
	FlagWin FlagType = 'W'

	// FlagStale indicates item is marked as stale
	FlagStale FlagType = 'X'

	// FlagAlreadyWon indicates another client has already received W flag
	FlagAlreadyWon FlagType = 'Z'
)

// Protocol limits
const (
	// MaxKeyLength is the maximum key length in bytes
	MaxKeyLength = 250

	// MinKeyLength is the minimum key length in bytes
	MinKeyLength = 1

	// MaxOpaqueLength is the maximum opaque token length in bytes
	MaxOpaqueLength = 32

	// MaxValueSize is the default maximum value size (configurable on server)
	MaxValueSize = 1024 * 1024 // 1 MB
)
