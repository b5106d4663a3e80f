package memcache

import (
	"errors"

	"github.com/quietbit/memcache/internal"
	"github.com/zeebo/xxh3"
)

var ErrNoServers = errors.New("memcache: no servers available")

// SelectServerFunc picks which server address to use for a key.
// It receives the key and the current list of server addresses.
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer uses xxh3 with Jump consistent hashing. Jump Hash gives
// an even distribution and moves few keys when servers are added or removed.
func DefaultSelectServer(key string, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}
	return servers[internal.JumpHash(xxh3.HashString(key), len(servers))], nil
}

// staticSelector is used in tests to always select a specific server.
func staticSelector(index int) SelectServerFunc {
	return func(key string, servers []string) (string, error) {
		if len(servers) == 0 {
			return "", ErrNoServers
		}
		return servers[index%len(servers)], nil
	}
}
