package netconf

import (
	"context"

	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"

	"github.com/nadoo/socks4tun/pkg/log"
)

// DHCP requests a lease on iface and returns the leased configuration.
func DHCP(ctx context.Context, iface string) (*Config, error) {
	client, err := nclient4.New(iface)
	if err != nil {
		log.F("[netconf] failed in dhcp client creation: %s", err)
		return nil, err
	}
	defer client.Close()

	lease, err := client.Request(ctx)
	if err != nil {
		return nil, err
	}

	return fromACK(lease.ACK, iface)
}
