package tunnel

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/nadoo/socks4tun/pkg/log"
	"github.com/nadoo/socks4tun/pkg/sockopt"
)

// Manager binds one listener per destination port and hands every
// accepted connection to the tunnel.
type Manager struct {
	tunnel *Tunnel
	host   string
	ports  []int
	lc     net.ListenConfig

	mu        sync.Mutex
	listeners []net.Listener
}

// NewManager returns a listener manager for ports on the local host,
// host may be empty to listen on all addresses.
func NewManager(t *Tunnel, host string, ports []int, opts ...sockopt.Option) *Manager {
	return &Manager{
		tunnel: t,
		host:   host,
		ports:  ports,
		lc:     net.ListenConfig{Control: sockopt.Control(opts...)},
	}
}

// Listen binds every port. If any bind fails, the ports already bound are
// released and the error is returned.
func (m *Manager) Listen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, port := range m.ports {
		addr := net.JoinHostPort(m.host, strconv.Itoa(port))
		l, err := m.lc.Listen(ctx, "tcp", addr)
		if err != nil {
			for _, l := range m.listeners {
				l.Close()
			}
			m.listeners = nil
			return err
		}
		log.F("[listener] listening TCP on %s", l.Addr())
		m.listeners = append(m.listeners, l)
	}

	return nil
}

// Addrs returns the addresses of the bound listeners.
func (m *Manager) Addrs() []net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()

	addrs := make([]net.Addr, 0, len(m.listeners))
	for _, l := range m.listeners {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// Serve accepts connections on every bound listener until ctx is done,
// then closes the listeners. Live pairs are left running.
func (m *Manager) Serve(ctx context.Context) {
	m.mu.Lock()
	listeners := m.listeners
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, l := range listeners {
		wg.Add(1)
		go func(l net.Listener) {
			defer wg.Done()
			m.serve(l)
		}(l)
	}

	<-ctx.Done()
	for _, l := range listeners {
		l.Close()
	}
	wg.Wait()
}

func (m *Manager) serve(l net.Listener) {
	// the accepting port is the destination port.
	port := l.Addr().(*net.TCPAddr).Port

	for {
		c, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.F("[listener] failed to accept on %s: %v", l.Addr(), err)
			continue
		}

		if c, ok := c.(*net.TCPConn); ok {
			c.SetKeepAlive(true)
		}

		go m.tunnel.Establish(c, port)
	}
}
