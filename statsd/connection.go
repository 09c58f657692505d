package statsd

import (
	"fmt"
	"strings"
	"time"
)

//go:generate mockgen -source=connection.go -destination=mocks/connection.go -package=mocks

const (
	// UnixAddressPrefix holds the prefix to use to enable Unix Domain Socket
	// traffic instead of UDP.
	UnixAddressPrefix = "unix://"
	// UnixAddressDatagramPrefix is an alias of UnixAddressPrefix.
	UnixAddressDatagramPrefix = "unixgram://"
	// WindowsPipeAddressPrefix holds the prefix to use to enable Windows Named
	// Pipes traffic instead of UDP.
	WindowsPipeAddressPrefix = `\\.\pipe\`
	// StdoutAddressPrefix writes datagrams as lines on the standard output,
	// optionally followed by "PREFIX/SUFFIX".
	StdoutAddressPrefix = "stdout://"

	// DefaultUDPMaxPacketSize fits an Ethernet MTU after IP and UDP headers.
	DefaultUDPMaxPacketSize = 1472
	// DefaultUDSMaxPacketSize is the default datagram size on Unix sockets.
	DefaultUDSMaxPacketSize = 8192
)

// DefaultWriteTimeout bounds every write on stream-like transports.
var DefaultWriteTimeout = 100 * time.Millisecond

// A Connection wraps a single endpoint. The socket is opened on the first Send
// and discarded after any error, so the next Send dials again.
type Connection interface {
	// Send writes one packet. It must be synchronous.
	Send(packet []byte) error
	// Close discards the socket. The connection stays usable.
	Close() error
	// Type is "udp", "uds", "pipe" or "stdout".
	Type() string
	// MaxPacketSize is the largest packet the transport should carry.
	MaxPacketSize() int
}

// NewConnection picks the transport from addr: "host:port" is UDP, a path or a
// unix:// address is a Unix datagram socket, \\.\pipe\name is a named pipe.
func NewConnection(addr string) (Connection, error) {
	switch {
	case addr == "":
		return nil, fmt.Errorf("statsd: no address given")
	case strings.HasPrefix(addr, StdoutAddressPrefix):
		return newStdoutConnection(addr[len(StdoutAddressPrefix):]), nil
	case strings.HasPrefix(addr, WindowsPipeAddressPrefix):
		return newPipeConnection(addr, DefaultWriteTimeout)
	case strings.HasPrefix(addr, UnixAddressPrefix):
		return newUDSConnection(addr[len(UnixAddressPrefix):], DefaultUDSMaxPacketSize, DefaultWriteTimeout)
	case strings.HasPrefix(addr, UnixAddressDatagramPrefix):
		return newUDSConnection(addr[len(UnixAddressDatagramPrefix):], DefaultUDSMaxPacketSize, DefaultWriteTimeout)
	case strings.Contains(addr, ":"):
		conn, err := newUDPConnection(addr, DefaultUDPMaxPacketSize)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return newUDSConnection(addr, DefaultUDSMaxPacketSize, DefaultWriteTimeout)
	}
}
