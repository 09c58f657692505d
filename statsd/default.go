package statsd

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process wide client, building it from the environment
// on first use. If that fails, the error is logged and a client dropping
// everything is returned.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		return defaultClient
	}
	client, err := NewFromEnvironment(NewEnvironment())
	if err != nil {
		logrus.WithError(err).Error("Could not build the statsd client from the environment, metrics are dropped")
		client, _ = New()
	}
	defaultClient = client
	return defaultClient
}

// SetDefault replaces the process wide client and returns the previous one,
// which may be nil.
func SetDefault(c *Client) *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	previous := defaultClient
	defaultClient = c
	return previous
}
