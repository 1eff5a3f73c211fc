package tunnel

import (
	"errors"
	"net"
	"sync"

	"github.com/nadoo/socks4tun/pkg/log"
)

// ErrRegistered is returned when inserting a pair whose member is already live.
var ErrRegistered = errors.New("[tunnel] connection already belongs to a live pair")

// Pair links an inbound connection with its connection to the gateway.
// A pair is identified by its two members.
type Pair struct {
	Client   net.Conn
	Upstream net.Conn

	// Port is the destination port the tunnel was requested for.
	Port int
}

// Registry is the set of live pairs, indexed by both members.
type Registry struct {
	mu      sync.Mutex
	members map[net.Conn]*Pair
	size    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[net.Conn]*Pair)}
}

// Insert adds p to the live set.
func (r *Registry) Insert(p *Pair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[p.Client]; ok {
		return ErrRegistered
	}
	if _, ok := r.members[p.Upstream]; ok {
		return ErrRegistered
	}

	r.members[p.Client] = p
	r.members[p.Upstream] = p
	r.size++

	return nil
}

// Find returns the live pairs that have c as a member, at most one.
func (r *Registry) Find(c net.Conn) []*Pair {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.members[c]; ok {
		return []*Pair{p}
	}
	return nil
}

// Remove removes p from the live set, it reports whether p was live.
// Removing an absent pair is a noop.
func (r *Registry) Remove(p *Pair) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(p)
}

func (r *Registry) remove(p *Pair) bool {
	if r.members[p.Client] != p || r.members[p.Upstream] != p {
		return false
	}

	delete(r.members, p.Client)
	delete(r.members, p.Upstream)
	r.size--

	return true
}

// Teardown removes the pair that c belongs to and closes both of its
// members. Only the caller that removes the pair closes it, so concurrent
// teardowns of the same pair close each member exactly once; a teardown
// that finds nothing is a noop. It reports whether this call closed a pair.
func (r *Registry) Teardown(c net.Conn, reason string) bool {
	r.mu.Lock()
	p, ok := r.members[c]
	if ok {
		ok = r.remove(p)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	log.F("[tunnel] %s <-> %s (port %d) closed, %s", remoteAddr(p.Client), remoteAddr(p.Upstream), p.Port, reason)

	// both closes are always attempted, errors are irrelevant here.
	p.Client.Close()
	p.Upstream.Close()

	return true
}

// Len returns the number of live pairs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Pairs returns a snapshot of the live pairs.
func (r *Registry) Pairs() []*Pair {
	r.mu.Lock()
	defer r.mu.Unlock()

	pairs := make([]*Pair, 0, r.size)
	for c, p := range r.members {
		if p.Client == c {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return "?"
}
