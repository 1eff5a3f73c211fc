package proxy

import (
	"errors"
	"net"
	"net/url"
	"sort"
	"strings"
)

// Dialer is used to create connections.
type Dialer interface {
	// Addr is the dialer's addr
	Addr() string

	// Dial connects to the given address
	Dial(network, addr string) (c net.Conn, err error)
}

// DialerCreator is a function to create dialers.
type DialerCreator func(s string, dialer Dialer) (Dialer, error)

var dialerCreators = make(map[string]DialerCreator)

// RegisterDialer is used to register a dialer.
func RegisterDialer(name string, c DialerCreator) {
	dialerCreators[strings.ToLower(name)] = c
}

// DialerFromURL calls the registered creator to create dialers.
// dialer is the upstream dialer so cannot be nil.
func DialerFromURL(s string, dialer Dialer) (Dialer, error) {
	if dialer == nil {
		return nil, errors.New("DialerFromURL: dialer cannot be nil")
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	c, ok := dialerCreators[strings.ToLower(u.Scheme)]
	if ok {
		return c(s, dialer)
	}

	return nil, errors.New("unknown scheme '" + u.Scheme + "'")
}

// DialerChain builds a dialer chain from a comma separated url list on top of d.
// An empty chain returns d itself.
func DialerChain(chain string, d Dialer) (Dialer, error) {
	if chain == "" {
		return d, nil
	}

	var err error
	for _, u := range strings.Split(chain, ",") {
		if d, err = DialerFromURL(strings.TrimSpace(u), d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DialerSchemes returns supported dialer schemes.
func DialerSchemes() string {
	s := make([]string, 0, len(dialerCreators))
	for name := range dialerCreators {
		s = append(s, name)
	}
	sort.Strings(s)
	return strings.Join(s, " ")
}
