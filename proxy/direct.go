package proxy

import (
	"errors"
	"net"
	"time"

	"github.com/nadoo/socks4tun/pkg/sockopt"
)

// Direct dials the target directly, optionally from a fixed local ip or interface.
type Direct struct {
	dialer *net.Dialer
	iface  *net.Interface
	ip     net.IP
}

// ErrNotAvailable is returned when the bound interface has no usable address.
var ErrNotAvailable = errors.New("dial error: no available ip address")

// NewDirect returns a Direct dialer. intface may be an ip address, an
// interface name or empty; timeout 0 means no dial timeout.
func NewDirect(intface string, timeout time.Duration) (*Direct, error) {
	d := &Direct{dialer: &net.Dialer{Timeout: timeout}}

	if intface == "" {
		return d, nil
	}

	if ip := net.ParseIP(intface); ip != nil {
		d.ip = ip
		d.dialer.LocalAddr = &net.TCPAddr{IP: ip}
		return d, nil
	}

	iface, err := net.InterfaceByName(intface)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + intface)
	}
	d.iface = iface
	d.dialer.Control = sockopt.Control(sockopt.Bind(iface))

	return d, nil
}

// Addr returns forwarder's address.
func (d *Direct) Addr() string { return "DIRECT" }

// Dial connects to the address addr on the network net.
func (d *Direct) Dial(network, addr string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, errors.New("[direct] no support for connection type " + network)
	}

	if d.iface != nil && !d.ifaceUp() {
		return nil, ErrNotAvailable
	}

	c, err := d.dialer.Dial(network, addr)
	if err != nil {
		return nil, err
	}

	if c, ok := c.(*net.TCPConn); ok {
		c.SetKeepAlive(true)
	}

	return c, nil
}

func (d *Direct) ifaceUp() bool {
	iface, err := net.InterfaceByIndex(d.iface.Index)
	if err != nil {
		return false
	}
	return iface.Flags&net.FlagUp != 0
}
