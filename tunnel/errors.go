package tunnel

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/nadoo/socks4tun/proxy/socks4"
)

// Kind classifies a terminal transport or handshake outcome.
// Every kind triggers the same teardown, it only feeds diagnostics.
type Kind int

// Terminal outcome kinds.
const (
	EndOfStream Kind = iota
	Timeout
	Refused
	Unknown
)

func (k Kind) String() string {
	switch k {
	case EndOfStream:
		return "end of stream"
	case Timeout:
		return "timeout"
	case Refused:
		return "refused"
	default:
		return "unknown error"
	}
}

// Classify maps err to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil,
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed):
		return EndOfStream
	case errors.Is(err, os.ErrDeadlineExceeded):
		return Timeout
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, socks4.ErrRejected),
		errors.Is(err, socks4.ErrIdentUnreachable),
		errors.Is(err, socks4.ErrIdentMismatch),
		errors.Is(err, socks4.ErrUnknownReply),
		errors.Is(err, socks4.ErrBadVersion):
		return Refused
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}

	return Unknown
}

// reason folds op and err into one diagnostic text.
func reason(op string, err error) string {
	k := Classify(err)
	if k == EndOfStream || err == nil {
		return fmt.Sprintf("%s: %s", op, k)
	}
	return fmt.Sprintf("%s: %s: %v", op, k, err)
}
