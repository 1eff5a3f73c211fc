package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nadoo/socks4tun/netconf"
	"github.com/nadoo/socks4tun/pkg/log"
	"github.com/nadoo/socks4tun/pkg/sockopt"
	"github.com/nadoo/socks4tun/proxy"
	"github.com/nadoo/socks4tun/proxy/socks4"
	"github.com/nadoo/socks4tun/tunnel"
)

var version = "0.1.0"

func main() {
	conf, err := parseConfig(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(-1)
	}

	if conf.Scheme != "" {
		fmt.Fprint(os.Stdout, proxy.Usage(conf.Scheme))
		return
	}

	// setup logger
	log.Set(conf.Verbose, conf.LogFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	local, err := localConfig(ctx, conf)
	if err != nil {
		log.Fatal(err)
	}

	tun, err := newTunnel(conf, local)
	if err != nil {
		log.Fatal(err)
	}

	opts, err := listenOptions(conf)
	if err != nil {
		log.Fatal(err)
	}

	m := tunnel.NewManager(tun, listenHost(local), conf.ports, opts...)
	if err := m.Listen(ctx); err != nil {
		log.Fatal(err)
	}

	log.Printf("socks4tun %s: %v -> %s via %s", version, conf.ports, conf.DestAddr, tun.Gateway)

	m.Serve(ctx)
}

// localConfig resolves the local network configuration, nil if none is set.
func localConfig(ctx context.Context, conf *Config) (*netconf.Config, error) {
	var local *netconf.Config
	var err error

	switch {
	case conf.DHCP:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		local, err = netconf.DHCP(ctx, conf.Interface)
	case conf.IPv4 != "":
		local, err = netconf.Static(conf.IPv4, conf.IPv4Gateway)
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if local.Iface == "" {
		local.Iface = conf.Interface
	}

	if !local.Assigned() {
		log.Printf("[netconf] warning: %s is not assigned to any local interface", local.IP)
	}
	log.F("[netconf] local network: %s", local)

	return local, nil
}

func listenHost(local *netconf.Config) string {
	if local == nil {
		return ""
	}
	return local.IP.String()
}

// listenOptions binds the listeners to the configured interface, if the
// interface is given by name.
func listenOptions(conf *Config) ([]sockopt.Option, error) {
	if conf.Interface == "" || net.ParseIP(conf.Interface) != nil {
		return nil, nil
	}

	iface, err := net.InterfaceByName(conf.Interface)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, conf.Interface)
	}
	return []sockopt.Option{sockopt.Bind(iface)}, nil
}

func newTunnel(conf *Config, local *netconf.Config) (*tunnel.Tunnel, error) {
	intface := conf.Interface
	if local != nil {
		intface = local.IP.String()
	}

	timeout := time.Duration(conf.DialTimeout) * time.Second

	direct, err := proxy.NewDirect(intface, timeout)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.DialerChain(conf.Via, direct)
	if err != nil {
		return nil, err
	}

	cfg := tunnel.Config{
		Gateway:          net.JoinHostPort(conf.GatewayAddr, strconv.Itoa(conf.GatewayPort)),
		Target:           conf.DestAddr,
		UserID:           conf.UserID,
		HandshakeTimeout: timeout,
		RelayTimeout:     time.Duration(conf.RelayTimeout) * time.Second,
		BufSize:          conf.TCPBufSize,
	}

	return tunnel.New(cfg, dialer, socks4.Client{Socks4a: conf.Socks4a}, tunnel.NewRegistry()), nil
}
