package tunnel

import (
	"net"
	"strconv"
	"time"

	"github.com/nadoo/socks4tun/pkg/log"
	"github.com/nadoo/socks4tun/proxy"
)

// DefaultBufSize is the default size of a forwarded chunk.
const DefaultBufSize = 32 << 10

// Handshaker asks the gateway, over an established connection c,
// to extend c to target.
type Handshaker interface {
	Connect(c net.Conn, userID, target string) error
}

// Config is the tunnel configuration, read once at startup.
type Config struct {
	// Gateway is the host:port of the socks4 gateway.
	Gateway string
	// Target is the destination host every tunnel is relayed to.
	Target string
	// UserID is sent in every connect request.
	UserID string

	// HandshakeTimeout bounds the gateway handshake, 0 means no limit.
	HandshakeTimeout time.Duration
	// RelayTimeout is the idle read timeout while forwarding, 0 means no limit.
	RelayTimeout time.Duration
	// BufSize is the size of a forwarded chunk.
	BufSize int
}

// Tunnel turns inbound connections into forwarding pairs through the gateway.
type Tunnel struct {
	Config
	dialer     proxy.Dialer
	handshaker Handshaker
	registry   *Registry
}

// New returns a tunnel that reaches the gateway with dialer and
// registers its pairs in registry.
func New(cfg Config, dialer proxy.Dialer, hs Handshaker, registry *Registry) *Tunnel {
	if cfg.BufSize <= 0 {
		cfg.BufSize = DefaultBufSize
	}
	return &Tunnel{Config: cfg, dialer: dialer, handshaker: hs, registry: registry}
}

// Establish dials the gateway for the inbound connection c, requests the
// destination port and forwards until either side terminates. c is closed
// when Establish returns, unless c already belongs to another live pair.
func (t *Tunnel) Establish(c net.Conn, port int) {
	rc, err := t.dialer.Dial("tcp", t.Gateway)
	if err != nil {
		log.F("[tunnel] %s <-> %s via %s, %s", remoteAddr(c), t.Gateway, t.dialer.Addr(), reason("dial", err))
		c.Close()
		return
	}

	p := &Pair{Client: c, Upstream: rc, Port: port}
	if err := t.registry.Insert(p); err != nil {
		log.F("[tunnel] %s: %v", remoteAddr(c), err)
		// c is owned by the live pair it belongs to.
		rc.Close()
		return
	}

	target := net.JoinHostPort(t.Target, strconv.Itoa(port))

	if t.HandshakeTimeout > 0 {
		rc.SetDeadline(time.Now().Add(t.HandshakeTimeout))
	}

	if err := t.handshaker.Connect(rc, t.UserID, target); err != nil {
		t.registry.Teardown(rc, reason("handshake with "+t.Gateway, err))
		return
	}

	if t.HandshakeTimeout > 0 {
		rc.SetDeadline(time.Time{})
	}

	log.F("[tunnel] %s <-> %s via %s", remoteAddr(c), target, t.Gateway)

	t.Forward(p)
}
