package statsd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	defaultStdoutPrefix = "MONITORING|"
	defaultStdoutSuffix = "\n"
)

// stdoutConnection prints each datagram as one line framed by a prefix and a
// suffix, for collectors that scrape the process output.
type stdoutConnection struct {
	prefix string
	suffix string

	mu     sync.Mutex
	output io.Writer
	line   []byte
}

var _ Connection = (*stdoutConnection)(nil)

// newStdoutConnection parses "PREFIX/SUFFIX"; either part may be empty. The
// suffix always ends the line.
func newStdoutConnection(addr string) *stdoutConnection {
	c := &stdoutConnection{prefix: defaultStdoutPrefix, suffix: defaultStdoutSuffix, output: os.Stdout}
	prefix, suffix, _ := strings.Cut(addr, "/")
	if prefix != "" {
		c.prefix = prefix
	}
	if suffix != "" {
		if !strings.HasSuffix(suffix, "\n") {
			suffix += "\n"
		}
		c.suffix = suffix
	}
	return c
}

func (c *stdoutConnection) Send(packet []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line = c.line[:0]
	for len(packet) > 0 {
		var datagram []byte
		datagram, packet, _ = bytes.Cut(packet, []byte{'\n'})
		if len(datagram) == 0 {
			continue
		}
		c.line = append(c.line, c.prefix...)
		c.line = append(c.line, datagram...)
		c.line = append(c.line, c.suffix...)
	}
	if len(c.line) == 0 {
		return nil
	}
	_, err := c.output.Write(c.line)
	return err
}

func (c *stdoutConnection) Close() error { return nil }

func (c *stdoutConnection) Type() string { return "stdout" }

func (c *stdoutConnection) MaxPacketSize() int { return DefaultUDSMaxPacketSize }
