package statsd_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/statsd-instrument/instrument/statsd"
	"github.com/statsd-instrument/instrument/statsd/mocks"
)

func newMockConnection(t *testing.T) *mocks.MockConnection {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnection(ctrl)
	conn.EXPECT().Type().Return("udp").AnyTimes()
	return conn
}

func TestConnectionSinkSends(t *testing.T) {
	conn := newMockConnection(t)
	conn.EXPECT().Send([]byte("a:1|c")).Return(nil)

	logger, hook := test.NewNullLogger()
	sink := statsd.NewSink(conn, logger)
	sink.Emit("a:1|c")
	assert.Empty(t, hook.AllEntries())
}

func TestConnectionSinkRetriesOnceOnAFreshSocket(t *testing.T) {
	conn := newMockConnection(t)
	gomock.InOrder(
		conn.EXPECT().Send([]byte("a:1|c")).Return(errors.New("connection refused")),
		conn.EXPECT().Close().Return(nil),
		conn.EXPECT().Send([]byte("a:1|c")).Return(nil),
	)

	logger, hook := test.NewNullLogger()
	sink := statsd.NewSink(conn, logger)
	sink.Emit("a:1|c")
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level)
	}
}

func TestConnectionSinkDropsAfterTheRetry(t *testing.T) {
	conn := newMockConnection(t)
	conn.EXPECT().Send(gomock.Any()).Return(errors.New("connection refused")).Times(2)
	conn.EXPECT().Close().Return(nil).Times(2)

	logger, hook := test.NewNullLogger()
	sink := statsd.NewSink(conn, logger)
	sink.Emit("a:1|c")

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, 5, entry.Data["size"])
		assert.Equal(t, "udp", entry.Data["transport"])
	}
}

func TestConnectionSinkRetriesWhenContended(t *testing.T) {
	conn := newMockConnection(t)
	logger, hook := test.NewNullLogger()
	sink := statsd.NewSink(conn, logger)

	started := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		conn.EXPECT().Send([]byte("a:1|c")).DoAndReturn(func([]byte) error {
			close(started)
			<-release
			return nil
		}),
		conn.EXPECT().Send([]byte("b:1|c")).Return(errors.New("connection refused")),
		conn.EXPECT().Close().Return(nil),
		conn.EXPECT().Send([]byte("b:1|c")).Return(nil),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sink.Emit("a:1|c")
	}()
	<-started

	done := make(chan struct{})
	go func() {
		defer close(done)
		sink.Emit("b:1|c")
	}()
	select {
	case <-done:
		t.Fatal("Emit did not wait for the send in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()
	<-done
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level)
	}
}

func TestConnectionSinkSampling(t *testing.T) {
	sink := statsd.NewSink(newMockConnection(t), nil)
	assert.True(t, sink.Sample(1))
	assert.True(t, sink.Sample(2))
	assert.False(t, sink.Sample(0))
	assert.False(t, sink.Sample(-1))

	hits := 0
	for i := 0; i < 10000; i++ {
		if sink.Sample(0.5) {
			hits++
		}
	}
	assert.InDelta(t, 5000, hits, 500)
}

func TestConnectionSinkClose(t *testing.T) {
	conn := newMockConnection(t)
	conn.EXPECT().Close().Return(nil)
	sink := statsd.NewSink(conn, nil)
	assert.Same(t, conn, sink.Connection())
	assert.NoError(t, sink.Close())
}

func TestNullSink(t *testing.T) {
	var sink statsd.Sink = statsd.NullSink{}
	assert.False(t, sink.Sample(1))
	sink.Emit("a:1|c")
	sink.Flush(true)
}

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	statsd.NewLogSink(logger).Emit("a:1|c\nb:2|g\n")
	entries := hook.AllEntries()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "[StatsD] a:1|c", entries[0].Message)
		assert.Equal(t, logrus.DebugLevel, entries[0].Level)
		assert.Equal(t, "[StatsD] b:2|g", entries[1].Message)
	}

	hook.Reset()
	statsd.NewLogSinkWithLevel(logger, logrus.InfoLevel).Emit("a:1|c")
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	}

	hook.Reset()
	logger.SetLevel(logrus.TraceLevel)
	statsd.NewLogSinkWithLevel(logger, logrus.TraceLevel).Emit("a:1|c")
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.TraceLevel, hook.LastEntry().Level)
	}

	hook.Reset()
	statsd.NewLogSinkWithLevel(traceless{logger}, logrus.TraceLevel).Emit("a:1|c")
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	}
}

// traceless hides the Trace methods of a logrus logger.
type traceless struct{ logrus.FieldLogger }

func TestCaptureSink(t *testing.T) {
	conn := newMockConnection(t)
	conn.EXPECT().Send([]byte("a:1|c")).Return(nil)

	capture := statsd.NewCaptureSink(statsd.NewSink(conn, nil), nil)
	assert.True(t, capture.Sample(0.0001))

	capture.Emit("a:1|c")
	datagrams := capture.Datagrams()
	if assert.Len(t, datagrams, 1) {
		assert.Equal(t, "a", datagrams[0].Name())
	}

	capture.Clear()
	assert.Empty(t, capture.Datagrams())
}
