package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

func readPacket(t *testing.T, conn net.PacketConn) string {
	t.Helper()
	buffer := make([]byte, 9000)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFrom(buffer)
	require.NoError(t, err)
	return string(buffer[:n])
}

func TestUDPConnectionSendsLazily(t *testing.T) {
	server, err := nettest.NewLocalPacketListener("udp")
	require.NoError(t, err)
	defer server.Close()

	conn, err := newUDPConnection(server.LocalAddr().String(), DefaultUDPMaxPacketSize)
	require.NoError(t, err)
	assert.Nil(t, conn.conn)
	assert.Equal(t, "udp", conn.Type())
	assert.Equal(t, DefaultUDPMaxPacketSize, conn.MaxPacketSize())

	require.NoError(t, conn.Send([]byte("a:1|c")))
	assert.Equal(t, "a:1|c", readPacket(t, server))

	require.NoError(t, conn.Close())
	assert.Nil(t, conn.conn)
	require.NoError(t, conn.Send([]byte("b:1|c")))
	assert.Equal(t, "b:1|c", readPacket(t, server))
	require.NoError(t, conn.Close())
}

func TestUDPConnectionRejectsBadAddress(t *testing.T) {
	_, err := newUDPConnection("localhost", DefaultUDPMaxPacketSize)
	assert.Error(t, err)
}

func TestNewConnection(t *testing.T) {
	conn, err := NewConnection("127.0.0.1:8125")
	require.NoError(t, err)
	assert.Equal(t, "udp", conn.Type())
	assert.Equal(t, DefaultUDPMaxPacketSize, conn.MaxPacketSize())

	conn, err = NewConnection("stdout://")
	require.NoError(t, err)
	assert.Equal(t, "stdout", conn.Type())

	_, err = NewConnection("")
	assert.Error(t, err)
}
