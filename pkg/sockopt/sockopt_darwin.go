package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func control(opt *Options) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var serr error
		err := c.Control(func(fd uintptr) {
			switch network {
			case "tcp4", "udp4":
				serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_BOUND_IF, opt.bindIface.Index)
			case "tcp6", "udp6":
				serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_BOUND_IF, opt.bindIface.Index)
			}
		})
		if err != nil {
			return err
		}
		return serr
	}
}
