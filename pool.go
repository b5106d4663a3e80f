package memcache

import (
	"context"
	"time"
)

// Pool manages a set of connections to a single server.
type Pool interface {
	// Acquire returns a connection resource, creating one if needed.
	// Blocks until a resource is available or the context is done.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle acquires every idle connection, for health checking.
	AcquireAllIdle() []Resource

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats

	// Close destroys all connections in the pool.
	Close()
}

// Resource is a pooled connection handle.
// The Conn is exclusively owned between Acquire and Release/Destroy.
type Resource interface {
	// Value returns the underlying connection.
	Value() *Conn

	// Release returns the connection to the pool for reuse.
	Release()

	// ReleaseUnused returns the connection without marking it as used.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool.
	Destroy()

	// CreationTime returns when the connection was established.
	CreationTime() time.Time

	// IdleDuration returns how long the connection has been idle.
	IdleDuration() time.Duration
}

// PoolStats contains statistics about a connection pool.
//
// For metrics integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns
//   - Counters: AcquireCount, AcquireWaitCount, CreatedConns, DestroyedConns, AcquireErrors
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}
