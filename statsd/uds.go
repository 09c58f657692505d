//go:build !windows
// +build !windows

package statsd

import (
	"net"
	"sync"
	"time"
)

// udsConnection is an internal class wrapping around management of UDS connection
type udsConnection struct {
	// Address to send metrics to, needed to allow reconnection on error
	addr          string
	maxPacketSize int
	// write timeout
	writeTimeout time.Duration
	// Established connection object, or nil if not connected yet
	conn         net.Conn
	sync.RWMutex // used to lock conn / writer can replace it
}

// newUDSConnection returns a connection to the datagram socket at path addr.
// Dialing is deferred to the first Send.
func newUDSConnection(addr string, maxPacketSize int, writeTimeout time.Duration) (*udsConnection, error) {
	if maxPacketSize <= 0 {
		maxPacketSize = DefaultUDSMaxPacketSize
	}
	return &udsConnection{addr: addr, maxPacketSize: maxPacketSize, writeTimeout: writeTimeout}, nil
}

// Send writes the packet with a write timeout. Any error drops the socket:
// the server may have restarted and the next Send dials it again.
func (c *udsConnection) Send(packet []byte) error {
	conn, err := c.ensureConnection()
	if err != nil {
		return err
	}

	if c.writeTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if _, err = conn.Write(packet); err != nil {
		c.unsetConnection(conn)
	}
	return err
}

func (c *udsConnection) ensureConnection() (net.Conn, error) {
	// Check if we've already got a socket we can use
	c.RLock()
	currentConn := c.conn
	c.RUnlock()

	if currentConn != nil {
		return currentConn, nil
	}

	// Looks like we might need to connect - try again with write locking.
	c.Lock()
	defer c.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	udsAddr, err := net.ResolveUnixAddr("unixgram", c.addr)
	if err != nil {
		return nil, err
	}
	newConn, err := net.DialUnix(udsAddr.Network(), nil, udsAddr)
	if err != nil {
		return nil, err
	}
	// a socket buffer smaller than one packet would reject every write
	newConn.SetWriteBuffer(c.maxPacketSize)
	c.conn = newConn
	return newConn, nil
}

func (c *udsConnection) unsetConnection(conn net.Conn) {
	c.Lock()
	defer c.Unlock()
	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *udsConnection) Close() error {
	c.Lock()
	defer c.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *udsConnection) Type() string { return "uds" }

func (c *udsConnection) MaxPacketSize() int { return c.maxPacketSize }

func (c *udsConnection) String() string { return c.addr }
