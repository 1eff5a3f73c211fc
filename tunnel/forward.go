package tunnel

import (
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/nadoo/socks4tun/pkg/pool"
)

// Forward copies bytes in both directions of p until either direction
// terminates. The terminating direction tears the pair down, which closes
// both members, so the other direction's pending read or write fails and
// its own teardown finds nothing to do.
func (t *Tunnel) Forward(p *Pair) {
	done := make(chan struct{}, 2)

	// last read on either direction, in unix nanoseconds.
	var last int64
	atomic.StoreInt64(&last, time.Now().UnixNano())

	go func() {
		t.copy(p.Upstream, p.Client, "client", &last)
		done <- struct{}{}
	}()

	go func() {
		t.copy(p.Client, p.Upstream, "upstream", &last)
		done <- struct{}{}
	}()

	<-done
}

// copy reads chunks from src and writes them to dst. A terminal read tears
// down the pair through src, a terminal write through dst. With a relay
// timeout, an expired read is retried while the other direction has been
// active within the timeout, so the pair only ends when both are idle.
func (t *Tunnel) copy(dst, src net.Conn, from string, last *int64) {
	buf := pool.GetBuffer(t.BufSize)
	defer pool.PutBuffer(buf)

	for {
		if t.RelayTimeout > 0 {
			src.SetReadDeadline(time.Now().Add(t.RelayTimeout))
		}

		n, err := src.Read(buf)
		if n > 0 {
			atomic.StoreInt64(last, time.Now().UnixNano())
			if _, werr := dst.Write(buf[:n]); werr != nil {
				t.registry.Teardown(dst, reason(peer(from)+" write", werr))
				return
			}
		}

		if err != nil {
			if t.RelayTimeout > 0 && errors.Is(err, os.ErrDeadlineExceeded) &&
				time.Since(time.Unix(0, atomic.LoadInt64(last))) < t.RelayTimeout {
				continue
			}
			t.registry.Teardown(src, reason(from+" read", err))
			return
		}
	}
}

func peer(side string) string {
	if side == "client" {
		return "upstream"
	}
	return "client"
}
