package meta

import "strconv"

// Value is one returned record: the data block (if any) and the sparse
// metadata flags the request asked for.
type Value struct {
	// Data is the item value (VA responses only)
	Data []byte

	// Flags contains the response flags attached to this record, in wire
	// order. Fields are sparse: only flags the request asked for are present.
	Flags Flags
}

// Opaque returns the echoed opaque token, if present.
func (v *Value) Opaque() (string, bool) {
	return v.Flags.Get(FlagOpaque)
}

// CAS returns the item CAS value, if present.
func (v *Value) CAS() (uint64, bool) {
	token, ok := v.Flags.Get(FlagReturnCAS)
	if !ok {
		return 0, false
	}
	cas, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return cas, true
}

// TTL returns the remaining TTL in seconds, if present. -1 means infinite.
func (v *Value) TTL() (int64, bool) {
	token, ok := v.Flags.Get(FlagReturnTTL)
	if !ok {
		return 0, false
	}
	ttl, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return ttl, true
}

// Size returns the item size in bytes, if present.
func (v *Value) Size() (int, bool) {
	token, ok := v.Flags.Get(FlagReturnSize)
	if !ok {
		return 0, false
	}
	size, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return size, true
}

// Key returns the echoed key, if present.
func (v *Value) Key() (string, bool) {
	return v.Flags.Get(FlagReturnKey)
}

// Response represents one parsed meta protocol response: either a bare
// status, or a status accompanied by returned records.
type Response struct {
	// Status is the 2-character response code: HD, VA, EN, NF, NS, EX, MN
	Status StatusType

	// Flags contains the flags attached to the status line, in wire order.
	Flags Flags

	// Values holds the returned records. A single-key request yields at most
	// one record; only VA responses populate it.
	Values []Value

	// Error is set for non-meta error responses: ERROR, CLIENT_ERROR,
	// SERVER_ERROR. When Error is set, other fields are empty.
	Error error
}

// First returns the first returned record, or nil if the response carried
// none. Callers must not assume collection semantics beyond index 0: a
// single-key request yields at most one logical record.
func (r *Response) First() *Value {
	if len(r.Values) == 0 {
		return nil
	}
	return &r.Values[0]
}

// IsSuccess returns true if the response indicates a successful operation.
// Success statuses: HD, VA, MN
func (r *Response) IsSuccess() bool {
	switch r.Status {
	case StatusHD, StatusVA, StatusMN:
		return true
	default:
		return false
	}
}

// IsMiss returns true if the response indicates a cache miss.
// Miss statuses: EN, NF
func (r *Response) IsMiss() bool {
	return r.Status == StatusEN || r.Status == StatusNF
}

// HasWinFlag returns true if the response carries the W (recache win) flag.
func (r *Response) HasWinFlag() bool {
	return r.Flags.Has(FlagWin)
}

// HasStaleFlag returns true if the response carries the X (stale) flag.
func (r *Response) HasStaleFlag() bool {
	return r.Flags.Has(FlagStale)
}
