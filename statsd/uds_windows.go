//go:build windows
// +build windows

package statsd

import (
	"fmt"
	"time"
)

// newUDSConnection is disabled on windows as unix sockets are not available
func newUDSConnection(addr string, _ int, _ time.Duration) (Connection, error) {
	return nil, fmt.Errorf("unix socket is not available on windows")
}
