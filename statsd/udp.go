package statsd

import (
	"net"
	"sync"
)

// udpConnection is an internal class wrapping around management of UDP connection
type udpConnection struct {
	addr          string
	maxPacketSize int

	conn         net.Conn
	sync.RWMutex // used to lock conn / writer can replace it
}

// newUDPConnection returns a connection to addr in the format "hostname:port".
// Resolution and dialing are deferred to the first Send.
func newUDPConnection(addr string, maxPacketSize int) (*udpConnection, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, err
	}
	return &udpConnection{addr: addr, maxPacketSize: maxPacketSize}, nil
}

func (c *udpConnection) Send(packet []byte) error {
	conn, err := c.ensureConnection()
	if err != nil {
		return err
	}
	if _, err = conn.Write(packet); err != nil {
		c.unsetConnection(conn)
	}
	return err
}

func (c *udpConnection) ensureConnection() (net.Conn, error) {
	c.RLock()
	currentConn := c.conn
	c.RUnlock()

	if currentConn != nil {
		return currentConn, nil
	}

	c.Lock()
	defer c.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	newConn, err := net.Dial("udp", c.addr)
	if err != nil {
		return nil, err
	}
	c.conn = newConn
	return newConn, nil
}

// unsetConnection closes conn if it is still the current socket.
func (c *udpConnection) unsetConnection(conn net.Conn) {
	c.Lock()
	defer c.Unlock()
	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *udpConnection) Close() error {
	c.Lock()
	defer c.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *udpConnection) Type() string { return "udp" }

func (c *udpConnection) MaxPacketSize() int { return c.maxPacketSize }

func (c *udpConnection) String() string { return c.addr }
