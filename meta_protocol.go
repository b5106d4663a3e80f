package memcache

import (
	"context"

	"github.com/quietbit/memcache/meta"
)

// The five meta protocol operations. Each writes one command (and, under
// quiet mode, the mn sentinel), flushes, then consumes and classifies the
// response.
//
// Typed parameters win over raw meta flags expressing the same concept: an
// explicit opaque suppresses caller O flags, an explicit delta suppresses
// caller D flags, and M/q flags are always ignored (the mode is implied by
// the operation, quiet mode is controlled only by the quiet parameter).

// MetaGet retrieves the given key with additional metadata.
//
// If the key is found and data was requested, the returned Value describes
// the metadata and data of the key. A miss returns (nil, nil).
//
// Command format:
//
//	mg <key> <meta_flags>*\r\n
//
// metaFlags may have associated tokens after the initial character, e.g.
// "O123" for opaque or "N60" for vivify. With quiet set, a no-op command is
// appended to the request so the client can proceed on a cache miss.
func (c *Conn) MetaGet(ctx context.Context, key string, quiet bool, opaque string, metaFlags []string) (*meta.Value, error) {
	req := meta.NewGetRequest(key).WithMetaFlags(metaFlags...)
	req.Quiet = quiet
	req.Opaque = opaque

	resp, err := c.roundTrip(ctx, req, meta.ParseGetResponse)
	if err != nil {
		return nil, err
	}
	return interpretResponse(resp, meta.StatusEN)
}

// MetaSet stores the given key with additional metadata.
//
// On success the result is nil unless response data was requested via
// metaFlags, in which case the returned Value is sparsely populated with
// only the requested fields.
//
// Command format:
//
//	ms <key> <datalen> <meta_flags>*\r\n<data_block>\r\n
func (c *Conn) MetaSet(ctx context.Context, key string, value []byte, quiet bool, opaque string, metaFlags []string) (*meta.Value, error) {
	req := meta.NewSetRequest(key, value).WithMetaFlags(metaFlags...)
	req.Quiet = quiet
	req.Opaque = opaque

	resp, err := c.roundTrip(ctx, req, meta.ParseSetResponse)
	if err != nil {
		return nil, err
	}
	return interpretResponse(resp, meta.StatusHD)
}

// MetaDelete deletes the given key with additional metadata.
//
// The key is deleted, invalidated or tombstoned depending on the meta flags
// provided. If data is requested back via metaFlags a Value is returned,
// otherwise nil.
//
// An EX response surfaces as ErrCASConflict: the item exists with a CAS
// value different from the one supplied.
//
// Command format:
//
//	md <key> <meta_flags>*\r\n
func (c *Conn) MetaDelete(ctx context.Context, key string, quiet bool, opaque string, metaFlags []string) (*meta.Value, error) {
	req := meta.NewDeleteRequest(key).WithMetaFlags(metaFlags...)
	req.Quiet = quiet
	req.Opaque = opaque

	resp, err := c.roundTrip(ctx, req, meta.ParseDeleteResponse)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}
	if v := resp.First(); v != nil {
		return v, nil
	}
	switch resp.Status {
	case meta.StatusHD, meta.StatusMN:
		return nil, nil
	case meta.StatusEX:
		return nil, meta.ErrCASConflict
	}
	return nil, meta.ErrorForStatus(resp.Status)
}

// MetaIncrement performs an increment operation on the given key.
//
// Increment is the protocol default mode and is never written explicitly.
// delta is the optional step size; nil or 1 means the protocol default of 1,
// and 1 is never transmitted. If data is requested back via metaFlags a
// Value is returned, otherwise nil.
//
// Command format:
//
//	ma <key> <meta_flags>*\r\n
func (c *Conn) MetaIncrement(ctx context.Context, key string, quiet bool, opaque string, delta *uint64, metaFlags []string) (*meta.Value, error) {
	req := meta.NewIncrementRequest(key).WithMetaFlags(metaFlags...)
	return c.metaArithmetic(ctx, req, quiet, opaque, delta)
}

// MetaDecrement performs a decrement operation on the given key.
//
// Identical to MetaIncrement except the MD mode flag is written immediately
// after the key.
//
// Command format:
//
//	ma <key> MD <meta_flags>*\r\n
func (c *Conn) MetaDecrement(ctx context.Context, key string, quiet bool, opaque string, delta *uint64, metaFlags []string) (*meta.Value, error) {
	req := meta.NewDecrementRequest(key).WithMetaFlags(metaFlags...)
	return c.metaArithmetic(ctx, req, quiet, opaque, delta)
}

// metaArithmetic runs one ma command. The mode is carried by the request
// (absent for increment, MD for decrement); everything else is shared.
func (c *Conn) metaArithmetic(ctx context.Context, req *meta.Request, quiet bool, opaque string, delta *uint64) (*meta.Value, error) {
	req.Quiet = quiet
	req.Opaque = opaque
	req.Delta = delta

	resp, err := c.roundTrip(ctx, req, meta.ParseArithmeticResponse)
	if err != nil {
		return nil, err
	}
	return interpretResponse(resp, meta.StatusHD)
}

// interpretResponse maps a parsed response to an operation result: a legacy
// error line propagates as-is, a returned record wins, the verb's
// "success, no data" status and the sentinel's MN yield an empty result, and
// every other status becomes a domain error carrying the status.
func interpretResponse(resp *meta.Response, emptyStatus meta.StatusType) (*meta.Value, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	if v := resp.First(); v != nil {
		return v, nil
	}
	switch resp.Status {
	case emptyStatus, meta.StatusMN:
		return nil, nil
	}
	return nil, meta.ErrorForStatus(resp.Status)
}
