package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nadoo/conflag"

	"github.com/nadoo/socks4tun/proxy"
	"github.com/nadoo/socks4tun/tunnel"
)

// Config is global config struct.
type Config struct {
	Verbose    bool
	LogFlags   int
	TCPBufSize int

	GatewayAddr string
	GatewayPort int
	Via         string

	DestAddr  string
	DestPorts string
	UserID    string
	Socks4a   bool

	IPv4        string
	IPv4Gateway string
	Interface   string
	DHCP        bool

	DialTimeout  int
	RelayTimeout int

	Scheme string

	ports []int
}

func parseConfig(args []string) (*Config, error) {
	conf := &Config{}
	flag := conflag.New(args...)

	flag.StringVar(&conf.Scheme, "scheme", "", "show help message of dialer scheme, use 'all' to see all schemes")

	flag.BoolVar(&conf.Verbose, "verbose", false, "verbose mode")
	flag.IntVar(&conf.LogFlags, "logflags", 19, "do not change it if you do not know what it is, ref: https://pkg.go.dev/log#pkg-constants")
	flag.IntVar(&conf.TCPBufSize, "tcpbufsize", tunnel.DefaultBufSize, "forward buffer size in Bytes")

	flag.StringVar(&conf.GatewayAddr, "gatewayaddr", "127.0.0.1", "socks4 gateway address")
	flag.IntVar(&conf.GatewayPort, "gatewayport", 1080, "socks4 gateway port")
	flag.StringVar(&conf.Via, "via", "", "dialer chain used to reach the gateway, e.g. ssh://user@host:22?key=/path/to/key")

	flag.StringVar(&conf.DestAddr, "destaddr", "", "destination address the gateway connects to")
	flag.StringVar(&conf.DestPorts, "destports", "", "comma separated destination ports, each one is also a listening port")
	flag.StringVar(&conf.UserID, "userid", "socks4tun", "socks4 user id")
	flag.BoolVar(&conf.Socks4a, "socks4a", false, "send destination host names to the gateway instead of resolving them locally")

	flag.StringVar(&conf.IPv4, "ipv4", "", "local ipv4 address in CIDR notation, e.g. 10.0.0.2/24")
	flag.StringVar(&conf.IPv4Gateway, "ipv4gateway", "", "local ipv4 gateway, must be inside the -ipv4 subnet")
	flag.StringVar(&conf.Interface, "interface", "", "local interface used to listen and dial")
	flag.BoolVar(&conf.DHCP, "dhcp", false, "get the local ipv4 address by dhcp on -interface")

	flag.IntVar(&conf.DialTimeout, "dialtimeout", 0, "gateway dial and handshake timeout(seconds), 0 means no timeout")
	flag.IntVar(&conf.RelayTimeout, "relaytimeout", 0, "idle relay timeout(seconds), 0 means no timeout")

	flag.Usage = func() { usage(flag) }
	if err := flag.Parse(); err != nil {
		return nil, err
	}

	if conf.Scheme != "" {
		return conf, nil
	}

	return conf, conf.validate()
}

func (conf *Config) validate() error {
	if conf.DestAddr == "" {
		return errors.New("destination address must be specified")
	}

	ports, err := parsePorts(conf.DestPorts)
	if err != nil {
		return err
	}
	conf.ports = ports

	if conf.GatewayAddr == "" {
		return errors.New("gateway address must be specified")
	}
	if conf.GatewayPort < 1 || conf.GatewayPort > 65535 {
		return fmt.Errorf("invalid gateway port: %d", conf.GatewayPort)
	}

	if conf.DHCP && conf.Interface == "" {
		return errors.New("-dhcp needs -interface")
	}
	if conf.DHCP && conf.IPv4 != "" {
		return errors.New("-dhcp and -ipv4 are exclusive")
	}
	if conf.IPv4Gateway != "" && conf.IPv4 == "" {
		return errors.New("-ipv4gateway needs -ipv4")
	}

	if conf.DialTimeout < 0 || conf.RelayTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}

	return nil
}

// parsePorts parses a comma separated port list, e.g. "22,80,443".
func parsePorts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("destination ports must be specified")
	}

	var ports []int
	seen := make(map[int]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		port, err := strconv.Atoi(f)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid destination port: %q", f)
		}
		if seen[port] {
			return nil, fmt.Errorf("duplicate destination port: %d", port)
		}
		seen[port] = true
		ports = append(ports, port)
	}

	return ports, nil
}

func usage(flag *conflag.Conflag) {
	fmt.Fprint(flag.Output(), usage1)
	flag.PrintDefaults()
	fmt.Fprintf(flag.Output(), usage2, proxy.DialerSchemes(), version)
}

var usage1 = `
Usage: socks4tun -destaddr HOST -destports PORT[,PORT]... [OPTION]...

  e.g. socks4tun -config /etc/socks4tun/socks4tun.conf
       socks4tun -gatewayaddr 127.0.0.1 -gatewayport 1080 -destaddr 10.0.0.5 -destports 22,80,443 -verbose

OPTION:
`

var usage2 = `
Every destination port is also a local listening port: a connection accepted
on port P is relayed to DESTADDR:P through the socks4 gateway.

VIA:
   chain: SCHEME://[USER:PASS@]HOST:PORT[,SCHEME://...]
   scheme: %s

   e.g. -via ssh://user@jumphost:22?key=/root/.ssh/id_ed25519 -gatewayaddr 127.0.0.1 -gatewayport 1080
        (the gateway address is dialed from the ssh server)

   Note: use 'socks4tun -scheme all' or 'socks4tun -scheme SCHEME' to see help info for the scheme.

--
socks4tun %s
`
