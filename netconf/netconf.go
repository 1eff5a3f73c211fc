// Package netconf resolves the local network configuration the tunnel
// listens and dials from.
package netconf

import (
	"errors"
	"fmt"
	"net"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

// ErrNotSupported is returned by DHCP on platforms without a dhcp client.
var ErrNotSupported = errors.New("[netconf] dhcp is not supported on this platform")

// Config is the local ipv4 configuration.
type Config struct {
	IP      net.IP
	Mask    net.IPMask
	Gateway net.IP
	Iface   string
}

// Static parses cidr (e.g. 10.0.0.2/24) and the optional gateway, which
// must be inside the subnet.
func Static(cidr, gateway string) (*Config, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("[netconf] invalid ipv4 address %q: %w", cidr, err)
	}

	c := &Config{IP: ip.To4(), Mask: ipnet.Mask}
	if c.IP == nil {
		return nil, fmt.Errorf("[netconf] %s is not an ipv4 address", cidr)
	}

	if gateway != "" {
		if c.Gateway = net.ParseIP(gateway).To4(); c.Gateway == nil {
			return nil, fmt.Errorf("[netconf] invalid ipv4 gateway %q", gateway)
		}
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	if c.IP.IsUnspecified() {
		return errors.New("[netconf] local address is unspecified")
	}
	if c.Gateway != nil && !c.Network().Contains(c.Gateway) {
		return fmt.Errorf("[netconf] gateway %s is outside %s", c.Gateway, c.Network())
	}
	return nil
}

// Network returns the local subnet.
func (c *Config) Network() *net.IPNet {
	return &net.IPNet{IP: c.IP.Mask(c.Mask), Mask: c.Mask}
}

func (c *Config) String() string {
	ones, _ := c.Mask.Size()
	s := fmt.Sprintf("%s/%d", c.IP, ones)
	if c.Gateway != nil {
		s += " gateway " + c.Gateway.String()
	}
	if c.Iface != "" {
		s += " on " + c.Iface
	}
	return s
}

// Assigned reports whether c.IP is configured on a local interface.
func (c *Config) Assigned() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		if n, ok := a.(*net.IPNet); ok && n.IP.Equal(c.IP) {
			return true
		}
	}
	return false
}

// fromACK builds the configuration leased by a dhcp ACK.
func fromACK(ack *dhcpv4.DHCPv4, iface string) (*Config, error) {
	if ack.MessageType() != dhcpv4.MessageTypeAck {
		return nil, fmt.Errorf("[netconf] unexpected dhcp reply %s", ack.MessageType())
	}

	c := &Config{IP: ack.YourIPAddr.To4(), Mask: ack.SubnetMask(), Iface: iface}
	if c.IP == nil {
		return nil, errors.New("[netconf] dhcp lease without an ipv4 address")
	}
	if c.Mask == nil {
		c.Mask = c.IP.DefaultMask()
	}
	if routers := ack.Router(); len(routers) > 0 {
		c.Gateway = routers[0].To4()
	}

	return c, c.validate()
}
