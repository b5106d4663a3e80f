package memcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/quietbit/memcache/meta"
)

// NoTTL represents an infinite TTL (no expiration).
const NoTTL = 0

// ErrCacheMiss is returned by Get and Delete when the key is not in cache.
var ErrCacheMiss = errors.New("memcache: cache miss")

// Config holds configuration for the memcache client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per server pool.
	// Required: must be > 0.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle
	// before being closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often to check idle connections for health.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, uses the puddle-based pool.
	Pool func(constructor func(ctx context.Context) (*Conn, error), maxSize int32) (Pool, error)

	// SelectServer picks which server to use for a key.
	// If nil, uses DefaultSelectServer (xxh3 + jump hash).
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// for testing purposes only
	constructor func(ctx context.Context) (*Conn, error)
}

// serverPool wraps a pool and its circuit breaker for one server address.
type serverPool struct {
	addr           string
	pool           Pool
	circuitBreaker CircuitBreaker // nil if not configured
}

// Client is a pooled, multi-server memcache client built on the meta
// protocol operations of Conn. It implements Querier.
type Client struct {
	servers      Servers
	selectServer SelectServerFunc
	config       Config

	mu    sync.RWMutex
	pools map[string]*serverPool

	stopHealthCheck chan struct{}

	stats clientStatsCollector
}

var _ Querier = (*Client)(nil)

// NewClient creates a new memcache client with the given servers and
// configuration. For a single server:
//
//	NewClient(NewStaticServers("127.0.0.1:11211"), Config{MaxSize: 4})
func NewClient(servers Servers, config Config) (*Client, error) {
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("memcache: MaxSize must be > 0")
	}
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	if config.Pool == nil {
		config.Pool = NewPuddlePool
	}
	if config.SelectServer == nil {
		config.SelectServer = DefaultSelectServer
	}

	client := &Client{
		servers:         servers,
		selectServer:    config.SelectServer,
		config:          config,
		pools:           make(map[string]*serverPool),
		stopHealthCheck: make(chan struct{}),
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close closes the client and destroys all connections in all pools.
func (c *Client) Close() {
	if c.config.HealthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sp := range c.pools {
		sp.pool.Close()
	}
}

// Stats returns a snapshot of client operation statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// ServerPoolStats contains stats for a single server pool.
type ServerPoolStats struct {
	Addr                string
	PoolStats           PoolStats
	CircuitBreakerState string
}

// AllPoolStats returns stats for all server pools created so far.
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		s := ServerPoolStats{
			Addr:      sp.addr,
			PoolStats: sp.pool.Stats(),
		}
		if sp.circuitBreaker != nil {
			s.CircuitBreakerState = sp.circuitBreaker.State().String()
		}
		stats = append(stats, s)
	}
	return stats
}

// poolForKey returns the pool for the server that should handle this key,
// creating it lazily.
func (c *Client) poolForKey(key string) (*serverPool, error) {
	addr, err := c.selectServer(key, c.servers.List())
	if err != nil {
		return nil, err
	}
	return c.getOrCreatePool(addr)
}

func (c *Client) getOrCreatePool(addr string) (*serverPool, error) {
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	constructor := c.config.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Conn, error) {
			netConn, err := c.config.Dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return NewConn(netConn), nil
		}
	}

	pool, err := c.config.Pool(constructor, c.config.MaxSize)
	if err != nil {
		return nil, err
	}

	sp = &serverPool{addr: addr, pool: pool}
	if c.config.NewCircuitBreaker != nil {
		sp.circuitBreaker = c.config.NewCircuitBreaker(addr)
	}
	c.pools[addr] = sp
	return sp, nil
}

// execute runs one operation against the server owning key, with proper
// connection management: acquire, run, then release or destroy depending on
// whether the error invalidated the connection. Wrapped with the server's
// circuit breaker when one is configured.
func (c *Client) execute(ctx context.Context, key string, op func(conn *Conn) (*meta.Value, error)) (*meta.Value, error) {
	sp, err := c.poolForKey(key)
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	if sp.circuitBreaker != nil {
		return sp.circuitBreaker.Execute(func() (*meta.Value, error) {
			return c.executeDirect(ctx, sp.pool, op)
		})
	}
	return c.executeDirect(ctx, sp.pool, op)
}

func (c *Client) executeDirect(ctx context.Context, pool Pool, op func(conn *Conn) (*meta.Value, error)) (*meta.Value, error) {
	resource, err := pool.Acquire(ctx)
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	value, err := op(resource.Value())
	if err != nil {
		if meta.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	return value, nil
}

// Get retrieves the value for a key. Returns ErrCacheMiss if not found.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.execute(ctx, key, func(conn *Conn) (*meta.Value, error) {
		return conn.MetaGet(ctx, key, false, "", []string{"v"})
	})
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	if value == nil {
		c.stats.recordGet(false)
		return nil, ErrCacheMiss
	}

	c.stats.recordGet(true)
	return value.Data, nil
}

// Set stores a value for a key. A ttl of NoTTL means no expiration.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var flags []string
	if ttl > 0 {
		flags = []string{"T" + strconv.FormatInt(int64(ttl/time.Second), 10)}
	}

	_, err := c.execute(ctx, key, func(conn *Conn) (*meta.Value, error) {
		return conn.MetaSet(ctx, key, value, false, "", flags)
	})
	if err != nil {
		c.stats.recordError()
		return err
	}

	c.stats.recordSet()
	return nil
}

// Delete removes a key from the cache. Returns ErrCacheMiss if not found.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.execute(ctx, key, func(conn *Conn) (*meta.Value, error) {
		return conn.MetaDelete(ctx, key, false, "", nil)
	})
	if err != nil {
		c.stats.recordError()
		if errors.Is(err, meta.ErrorForStatus(meta.StatusNF)) {
			return ErrCacheMiss
		}
		return err
	}

	c.stats.recordDelete()
	return nil
}

// Increment increases a counter by delta and returns the new value.
// The counter is created with value delta if it doesn't exist.
func (c *Client) Increment(ctx context.Context, key string, delta uint64) (uint64, error) {
	// Auto-vivify with the delta as initial value so the returned value is
	// correct on first call.
	flags := []string{"v", "N0", "J" + strconv.FormatUint(delta, 10)}

	value, err := c.execute(ctx, key, func(conn *Conn) (*meta.Value, error) {
		return conn.MetaIncrement(ctx, key, false, "", &delta, flags)
	})
	if err != nil {
		c.stats.recordError()
		return 0, err
	}

	result, err := parseCounterValue(value)
	if err != nil {
		c.stats.recordError()
		return 0, err
	}

	c.stats.recordIncrement()
	return result, nil
}

// Decrement decreases a counter by delta and returns the new value.
// The counter stops at 0 and is created at 0 if it doesn't exist.
func (c *Client) Decrement(ctx context.Context, key string, delta uint64) (uint64, error) {
	flags := []string{"v", "N0", "J0"}

	value, err := c.execute(ctx, key, func(conn *Conn) (*meta.Value, error) {
		return conn.MetaDecrement(ctx, key, false, "", &delta, flags)
	})
	if err != nil {
		c.stats.recordError()
		return 0, err
	}

	result, err := parseCounterValue(value)
	if err != nil {
		c.stats.recordError()
		return 0, err
	}

	c.stats.recordDecrement()
	return result, nil
}

func parseCounterValue(value *meta.Value) (uint64, error) {
	if value == nil {
		return 0, fmt.Errorf("memcache: arithmetic response missing value")
	}
	result, err := strconv.ParseUint(string(value.Data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("memcache: failed to parse counter value: %w", err)
	}
	return result, nil
}

// healthCheckLoop periodically checks idle connections for health and
// lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*serverPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp)
	}
}

// checkPoolConnections checks all idle connections in a pool and destroys
// those that are stale or unhealthy.
func (c *Client) checkPoolConnections(sp *serverPool) {
	now := time.Now()

	for _, res := range sp.pool.AcquireAllIdle() {
		if c.config.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.config.MaxConnLifetime {
			res.Destroy()
			continue
		}

		if c.config.MaxConnIdleTime > 0 && res.IdleDuration() > c.config.MaxConnIdleTime {
			res.Destroy()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := res.Value().Ping(ctx)
		cancel()
		if err != nil {
			slog.Debug("memcache: health check failed, destroying connection",
				"server", sp.addr, "error", err)
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}
