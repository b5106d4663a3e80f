package memcache

import (
	"sync/atomic"
	"time"
)

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// For metrics integration, expose these as:
//   - Counters: Gets, Sets, Deletes, Increments, Decrements, Errors
//   - Counter: GetHits (derive hit rate as GetHits/Gets)
type ClientStats struct {
	Gets       uint64 // Total Get operations
	Sets       uint64 // Total Set operations
	Deletes    uint64 // Total Delete operations
	Increments uint64 // Total Increment operations
	Decrements uint64 // Total Decrement operations
	GetHits    uint64 // Get operations that found the key
	Errors     uint64 // Total errors across all operations
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - the client updates its own stats.
type clientStatsCollector struct {
	stats ClientStats
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordSet() {
	atomic.AddUint64(&c.stats.Sets, 1)
}

func (c *clientStatsCollector) recordDelete() {
	atomic.AddUint64(&c.stats.Deletes, 1)
}

func (c *clientStatsCollector) recordIncrement() {
	atomic.AddUint64(&c.stats.Increments, 1)
}

func (c *clientStatsCollector) recordDecrement() {
	atomic.AddUint64(&c.stats.Decrements, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:       atomic.LoadUint64(&c.stats.Gets),
		Sets:       atomic.LoadUint64(&c.stats.Sets),
		Deletes:    atomic.LoadUint64(&c.stats.Deletes),
		Increments: atomic.LoadUint64(&c.stats.Increments),
		Decrements: atomic.LoadUint64(&c.stats.Decrements),
		GetHits:    atomic.LoadUint64(&c.stats.GetHits),
		Errors:     atomic.LoadUint64(&c.stats.Errors),
	}
}

// poolStatsCollector provides internal methods for updating pool stats.
// Not exported - pools update their own stats.
type poolStatsCollector struct {
	stats PoolStats
}

func (c *poolStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	atomic.AddUint64(&c.stats.CreatedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, 1)
}

func (c *poolStatsCollector) recordDestroy() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
}

func (c *poolStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	atomic.AddInt32(&c.stats.IdleConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordActivate() {
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.IdleConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        atomic.LoadInt32(&c.stats.TotalConns),
		IdleConns:         atomic.LoadInt32(&c.stats.IdleConns),
		ActiveConns:       atomic.LoadInt32(&c.stats.ActiveConns),
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		CreatedConns:      atomic.LoadUint64(&c.stats.CreatedConns),
		DestroyedConns:    atomic.LoadUint64(&c.stats.DestroyedConns),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
	}
}
