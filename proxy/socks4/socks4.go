// https://www.openssh.com/txt/socks4.protocol
// https://www.openssh.com/txt/socks4a.protocol

// socks4 client

package socks4

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"

	"github.com/nadoo/socks4tun/pkg/log"
	"github.com/nadoo/socks4tun/pkg/pool"
	"github.com/nadoo/socks4tun/proxy"
)

const (
	// Version is socks4 version number.
	Version = 4
	// ConnectCommand connect command byte
	ConnectCommand = 1
)

// Reply codes.
const (
	Granted          = 0x5a
	Rejected         = 0x5b
	IdentUnreachable = 0x5c
	IdentMismatch    = 0x5d
)

var (
	// ErrRejected means the gateway rejected the request or failed to reach the target.
	ErrRejected = errors.New("[socks4] connection request rejected or failed")
	// ErrIdentUnreachable means the gateway could not reach identd on the client.
	ErrIdentUnreachable = errors.New("[socks4] connection request failed because client is not running identd (or not reachable from the server)")
	// ErrIdentMismatch means identd could not confirm the user id.
	ErrIdentMismatch = errors.New("[socks4] connection request failed because client's identd could not confirm the user ID in the request")
	// ErrUnknownReply is returned for reply codes outside the protocol.
	ErrUnknownReply = errors.New("[socks4] connection request failed, unknown error")
	// ErrBadVersion is returned when the reply version is neither 0 nor 4.
	ErrBadVersion = errors.New("[socks4] unexpected reply version")
	// ErrIPv6 is returned for targets that only resolve to ipv6.
	ErrIPv6 = errors.New("[socks4] IPv6 is not supported by socks4")
)

// Client performs the socks4 CONNECT exchange on an established connection.
type Client struct {
	// Socks4a sends unresolved host names to the gateway.
	Socks4a bool
}

// Connect takes an existing connection to a socks4 gateway and commands it
// to extend that connection to target, which must be a canonical address
// with a host and port. An io.EOF or io.ErrUnexpectedEOF error means the
// gateway closed the connection before replying.
func (cl Client) Connect(c net.Conn, userID, target string) error {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return err
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return errors.New("[socks4] failed to parse port number: " + portStr)
	}

	ip, hostname, err := cl.address(host)
	if err != nil {
		return err
	}

	size := 8 + len(userID) + 1
	if hostname != "" {
		size += len(hostname) + 1
	}

	req := pool.GetBuffer(size)
	defer pool.PutBuffer(req)

	req[0] = Version
	req[1] = ConnectCommand
	req[2] = byte(port >> 8) // higher byte of destination port
	req[3] = byte(port)      // lower byte of destination port (big endian)
	copy(req[4:8], ip)
	n := 8 + copy(req[8:], userID)
	req[n] = 0
	if hostname != "" {
		n += 1 + copy(req[n+1:], hostname)
		req[n] = 0
	}

	if _, err := c.Write(req); err != nil {
		return fmt.Errorf("[socks4] failed to write request to %s: %w", c.RemoteAddr(), err)
	}

	resp := pool.GetBuffer(8)
	defer pool.PutBuffer(resp)

	if _, err := io.ReadFull(c, resp); err != nil {
		return fmt.Errorf("[socks4] failed to read reply from %s: %w", c.RemoteAddr(), err)
	}

	// the reply version should be 0, some servers echo 4.
	if resp[0] != 0 && resp[0] != Version {
		return ErrBadVersion
	}

	return replyError(resp[1])
}

// address returns the DSTIP field and, in socks4a mode for unresolved
// names, the host name to append after the user id.
func (cl Client) address(host string) (net.IP, string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip = ip.To4(); ip == nil {
			return nil, "", ErrIPv6
		}
		return ip, "", nil
	}

	if cl.Socks4a {
		// The client should set the first three bytes of DSTIP to NULL
		// and the last byte to a non-zero value.
		return net.IP{0, 0, 0, 1}, host, nil
	}

	ip, err := lookupIP(host)
	return ip, "", err
}

func lookupIP(host string) (net.IP, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	if len(ips) == 0 {
		return nil, errors.New("[socks4] cannot resolve host: " + host)
	}
	return nil, ErrIPv6
}

func replyError(code byte) error {
	switch code {
	case Granted:
		return nil
	case Rejected:
		return ErrRejected
	case IdentUnreachable:
		return ErrIdentUnreachable
	case IdentMismatch:
		return ErrIdentMismatch
	default:
		return ErrUnknownReply
	}
}

// SOCKS4 is a socks4 dialer, usable as a hop in a dialer chain.
type SOCKS4 struct {
	Client
	dialer proxy.Dialer
	addr   string
	userID string
}

func init() {
	proxy.RegisterDialer("socks4", NewSocks4Dialer)
	proxy.RegisterDialer("socks4a", NewSocks4Dialer)
}

// NewSOCKS4 returns a socks4 proxy, s is socks4://[USERID@]HOST:PORT.
func NewSOCKS4(s string, dialer proxy.Dialer) (*SOCKS4, error) {
	u, err := url.Parse(s)
	if err != nil {
		log.F("[socks4] parse err: %s", err)
		return nil, err
	}

	h := &SOCKS4{
		Client: Client{Socks4a: u.Scheme == "socks4a"},
		dialer: dialer,
		addr:   u.Host,
	}
	if u.User != nil {
		h.userID = u.User.Username()
	}

	return h, nil
}

// NewSocks4Dialer returns a socks4 proxy dialer.
func NewSocks4Dialer(s string, dialer proxy.Dialer) (proxy.Dialer, error) {
	return NewSOCKS4(s, dialer)
}

// Addr returns forwarder's address.
func (s *SOCKS4) Addr() string {
	if s.addr == "" {
		return s.dialer.Addr()
	}
	return s.addr
}

// Dial connects to the address addr on the network net via the SOCKS4 proxy.
func (s *SOCKS4) Dial(network, addr string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4":
	default:
		return nil, errors.New("[socks4] no support for connection type " + network)
	}

	c, err := s.dialer.Dial(network, s.addr)
	if err != nil {
		log.F("[socks4] dial to %s error: %s", s.addr, err)
		return nil, err
	}

	if err := s.Connect(c, s.userID, addr); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func init() {
	proxy.AddUsage("socks4", `
Socks4 scheme:
  socks4://[USERID@]host:port
  socks4a://[USERID@]host:port    (let the server resolve host names)
`)
}
