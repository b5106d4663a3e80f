package memcache

// Servers provides the list of server addresses to spread keys over.
// Implementations may return a different list over time (e.g. from service
// discovery); the client creates pools lazily per address.
type Servers interface {
	List() []string
}

type staticServers struct {
	addresses []string
}

// NewStaticServers returns a fixed server list.
// For a single server: NewStaticServers("127.0.0.1:11211")
func NewStaticServers(addresses ...string) Servers {
	return &staticServers{addresses: addresses}
}

func (s *staticServers) List() []string {
	return s.addresses
}
