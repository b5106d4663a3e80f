package memcache

import (
	"time"

	"github.com/quietbit/memcache/meta"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the request path to one server.
// Satisfied by gobreaker.CircuitBreaker[*meta.Value].
type CircuitBreaker interface {
	Execute(fn func() (*meta.Value, error)) (*meta.Value, error)
	State() gobreaker.State
	Counts() gobreaker.Counts
}

// NewCircuitBreakerConfig returns a function that creates circuit breakers
// for servers, for use as Config.NewCircuitBreaker. The breaker opens once a
// server has answered at least 3 requests in the interval with a failure
// ratio of 60% or more.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(serverAddr string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*meta.Value](settings)
	}
}
