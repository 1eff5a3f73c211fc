//go:build !linux
// +build !linux

package netconf

import "context"

// DHCP is only supported on linux.
func DHCP(ctx context.Context, iface string) (*Config, error) {
	return nil, ErrNotSupported
}
