package tunnel

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

// testConn counts closes and can fail writes on demand.
type testConn struct {
	net.Conn
	closes   int32
	writeErr error
}

func newPipe() (*testConn, net.Conn) {
	a, b := net.Pipe()
	return &testConn{Conn: a}, b
}

func (c *testConn) Write(b []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.Conn.Write(b)
}

func (c *testConn) Close() error {
	atomic.AddInt32(&c.closes, 1)
	return c.Conn.Close()
}

func (c *testConn) Closes() int { return int(atomic.LoadInt32(&c.closes)) }

type dialFunc func(network, addr string) (net.Conn, error)

func (f dialFunc) Addr() string { return "test" }

func (f dialFunc) Dial(network, addr string) (net.Conn, error) { return f(network, addr) }

type handshakeFunc func(c net.Conn, userID, target string) error

func (f handshakeFunc) Connect(c net.Conn, userID, target string) error { return f(c, userID, target) }

var granted = handshakeFunc(func(net.Conn, string, string) error { return nil })

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// gatewayRequest is a connect request seen by the test gateway.
type gatewayRequest struct {
	ip     net.IP
	port   int
	userID string
}

// startGateway runs a socks4 gateway on loopback that grants every request
// and then echoes the relayed bytes back.
func startGateway(t *testing.T) (string, <-chan gatewayRequest) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })

	reqs := make(chan gatewayRequest, 16)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()

				r := bufio.NewReader(c)
				head := make([]byte, 8)
				if _, err := io.ReadFull(r, head); err != nil {
					return
				}
				userID, err := r.ReadString(0)
				if err != nil {
					return
				}

				reqs <- gatewayRequest{
					ip:     net.IP(head[4:8]),
					port:   int(binary.BigEndian.Uint16(head[2:4])),
					userID: userID[:len(userID)-1],
				}

				if _, err := c.Write([]byte{0, 0x5a, 0, 0, 0, 0, 0, 0}); err != nil {
					return
				}
				io.Copy(c, r)
			}()
		}
	}()

	return l.Addr().String(), reqs
}
