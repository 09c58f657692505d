//go:build windows
// +build windows

package statsd

import (
	"net"
	"sync"
	"time"

	"github.com/Microsoft/go-winio"
)

// pipeConnection writes packets to a Windows named pipe, dialed on first use.
type pipeConnection struct {
	path        string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

func newPipeConnection(pipepath string, dialTimeout time.Duration) (Connection, error) {
	return &pipeConnection{path: pipepath, dialTimeout: dialTimeout}, nil
}

func (p *pipeConnection) Send(packet []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		conn, err := winio.DialPipe(p.path, &p.dialTimeout)
		if err != nil {
			return err
		}
		p.conn = conn
	}
	_, err := p.conn.Write(packet)
	if err != nil {
		p.conn.Close()
		p.conn = nil
	}
	return err
}

func (p *pipeConnection) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *pipeConnection) Type() string { return "pipe" }

// MaxPacketSize matches Unix sockets: pipes carry larger writes than UDP.
func (p *pipeConnection) MaxPacketSize() int { return DefaultUDSMaxPacketSize }
