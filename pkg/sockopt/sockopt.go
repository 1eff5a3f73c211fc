package sockopt

import (
	"net"
	"syscall"
)

// Options is the options struct.
type Options struct {
	bindIface *net.Interface
}

// Option is the function paramater.
type Option func(opts *Options)

// Bind binds the socket to the given interface.
func Bind(intf *net.Interface) Option { return func(opts *Options) { opts.bindIface = intf } }

// Control returns a control function for net.Dialer and net.ListenConfig,
// nil if no option applies.
func Control(opts ...Option) func(network, address string, c syscall.RawConn) error {
	option := &Options{}
	for _, opt := range opts {
		opt(option)
	}

	if option.bindIface == nil {
		return nil
	}

	return control(option)
}
