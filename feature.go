package main

import (
	// comment out the dialers you don't need to make the compiled binary smaller.
	_ "github.com/nadoo/socks4tun/proxy/socks4"
	_ "github.com/nadoo/socks4tun/proxy/ssh"
)
