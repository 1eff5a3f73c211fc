package netconf

import (
	"net"
	"testing"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

func TestStatic(t *testing.T) {
	c, err := Static("10.0.0.2/24", "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if !c.IP.Equal(net.IPv4(10, 0, 0, 2)) || !c.Gateway.Equal(net.IPv4(10, 0, 0, 1)) {
		t.Fatalf("unexpected config %s", c)
	}
	if got := c.Network().String(); got != "10.0.0.0/24" {
		t.Fatalf("network %s", got)
	}
	if got := c.String(); got != "10.0.0.2/24 gateway 10.0.0.1" {
		t.Fatalf("String() = %q", got)
	}
}

func TestStaticInvalid(t *testing.T) {
	cases := []struct{ cidr, gw string }{
		{"10.0.0.2", ""},
		{"fd00::2/64", ""},
		{"0.0.0.0/0", ""},
		{"10.0.0.2/24", "nope"},
		{"10.0.0.2/24", "10.0.1.1"},
	}
	for _, tc := range cases {
		if _, err := Static(tc.cidr, tc.gw); err == nil {
			t.Errorf("Static(%q, %q): expected error", tc.cidr, tc.gw)
		}
	}
}

func TestAssignedLoopback(t *testing.T) {
	c, err := Static("127.0.0.1/8", "")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Assigned() {
		t.Skip("no loopback address configured")
	}
}

func TestFromACK(t *testing.T) {
	ack, err := dhcpv4.New(
		dhcpv4.WithMessageType(dhcpv4.MessageTypeAck),
		dhcpv4.WithYourIP(net.IPv4(192, 168, 1, 50)),
		dhcpv4.WithNetmask(net.CIDRMask(24, 32)),
		dhcpv4.WithRouter(net.IPv4(192, 168, 1, 1)),
	)
	if err != nil {
		t.Fatal(err)
	}

	c, err := fromACK(ack, "eth0")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != "192.168.1.50/24 gateway 192.168.1.1 on eth0" {
		t.Fatalf("String() = %q", got)
	}
}

func TestFromACKDefaultMask(t *testing.T) {
	ack, err := dhcpv4.New(
		dhcpv4.WithMessageType(dhcpv4.MessageTypeAck),
		dhcpv4.WithYourIP(net.IPv4(10, 1, 2, 3)),
	)
	if err != nil {
		t.Fatal(err)
	}

	c, err := fromACK(ack, "eth0")
	if err != nil {
		t.Fatal(err)
	}
	if ones, _ := c.Mask.Size(); ones != 8 || c.Gateway != nil {
		t.Fatalf("unexpected config %s", c)
	}
}

func TestFromACKRejectsNak(t *testing.T) {
	nak, err := dhcpv4.New(dhcpv4.WithMessageType(dhcpv4.MessageTypeNak))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fromACK(nak, "eth0"); err == nil {
		t.Fatal("expected error for NAK")
	}
}
