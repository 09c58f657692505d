package statsd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilinna/clock"
)

type emitRecorder struct {
	mu        sync.Mutex
	datagrams []string
}

func (e *emitRecorder) emit(datagram string) {
	e.mu.Lock()
	e.datagrams = append(e.datagrams, datagram)
	e.mu.Unlock()
}

func (e *emitRecorder) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.datagrams...)
}

func newTestAggregator(t *testing.T, ctx context.Context, maxValues int) (*aggregator, *emitRecorder) {
	prefixed, err := NewBuilder("datadog", "app", nil)
	require.NoError(t, err)
	plain, err := NewBuilder("datadog", "", nil)
	require.NoError(t, err)
	builder := func(noPrefix bool) *Builder {
		if noPrefix {
			return plain
		}
		return prefixed
	}

	logger, _ := test.NewNullLogger()
	out := &emitRecorder{}
	a := newAggregator(ctx, out.emit, builder, time.Second, maxValues, logger)
	t.Cleanup(a.close)
	return a, out
}

func TestAggregatorCounters(t *testing.T) {
	a, out := newTestAggregator(t, context.Background(), 10)

	require.NoError(t, a.increment("hits", 1, []string{"b:2", "a:1"}, false))
	require.NoError(t, a.increment("hits", 2, []string{"a:1", "b:2"}, false))
	require.NoError(t, a.increment("hits", 4, nil, false))
	require.NoError(t, a.increment("hits", 8, nil, true))
	a.flush()

	assert.ElementsMatch(t, []string{
		"app.hits:3|c|#a:1,b:2",
		"app.hits:4|c",
		"hits:8|c",
	}, out.all())
}

func TestAggregatorGaugeKeepsLastValue(t *testing.T) {
	a, out := newTestAggregator(t, context.Background(), 10)

	require.NoError(t, a.gauge("queue", 5, nil, false))
	require.NoError(t, a.gauge("queue", 2, nil, false))
	a.flush()
	assert.Equal(t, []string{"app.queue:2|g"}, out.all())

	a.flush()
	assert.Len(t, out.all(), 1)
}

func TestAggregatorTimingsArePackedPerRate(t *testing.T) {
	a, out := newTestAggregator(t, context.Background(), 10)

	require.NoError(t, a.aggregateTiming(Distribution, "latency", 1, 1, nil, false))
	require.NoError(t, a.aggregateTiming(Distribution, "latency", 2.5, 1, nil, false))
	require.NoError(t, a.aggregateTiming(Distribution, "latency", 3, 0.5, nil, false))
	require.NoError(t, a.aggregateTiming(Timing, "latency", 4, 1, nil, false))
	a.flush()

	assert.ElementsMatch(t, []string{
		"app.latency:1:2.5|d",
		"app.latency:3|d|@0.5",
		"app.latency:4|ms",
	}, out.all())
}

func TestAggregatorFlushesWhenABucketIsFull(t *testing.T) {
	a, out := newTestAggregator(t, context.Background(), 3)

	require.NoError(t, a.increment("hits", 1, nil, false))
	for i := 1; i <= 3; i++ {
		require.NoError(t, a.aggregateTiming(Histogram, "size", float64(i), 1, nil, false))
	}
	assert.ElementsMatch(t, []string{"app.hits:1|c", "app.size:1:2|h"}, out.all())

	a.flush()
	assert.Equal(t, "app.size:3|h", out.all()[2])
}

func TestAggregatorFlushesEveryInterval(t *testing.T) {
	mock := clock.NewMock(time.Unix(1700000000, 0))
	ctx := clock.Context(context.Background(), mock)
	a, out := newTestAggregator(t, ctx, 10)

	require.NoError(t, a.increment("hits", 1, nil, false))
	mock.Add(500 * time.Millisecond)
	assert.Empty(t, out.all())

	mock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return len(out.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "app.hits:1|c", out.all()[0])
}

func TestAggregatorEmitsDirectlyOnceClosed(t *testing.T) {
	a, out := newTestAggregator(t, context.Background(), 10)

	require.NoError(t, a.increment("hits", 1, nil, false))
	a.close()
	assert.Equal(t, []string{"app.hits:1|c"}, out.all())

	require.NoError(t, a.increment("hits", 1, nil, false))
	require.NoError(t, a.gauge("queue", 1, nil, true))
	require.NoError(t, a.aggregateTiming(Distribution, "latency", 1, 0.5, nil, false))
	assert.Equal(t, []string{"app.hits:1|c", "app.hits:1|c", "queue:1|g", "app.latency:1|d|@0.5"}, out.all())
	a.close()
}

func TestAggregatorDropsBucketsAfterFork(t *testing.T) {
	pid := processID()
	t.Cleanup(func() { processID = func() int { return pid } })
	a, out := newTestAggregator(t, context.Background(), 10)

	require.NoError(t, a.increment("parent", 1, nil, false))
	previous := a.flusher

	processID = func() int { return pid + 1 }
	require.NoError(t, a.increment("child", 1, nil, false))
	a.flush()

	assert.Equal(t, []string{"app.child:1|c"}, out.all())
	assert.NotSame(t, previous, a.flusher)
	assert.Equal(t, pid+1, a.flusher.pid)
	assert.Eventually(t, func() bool { return !previous.alive() }, time.Second, 5*time.Millisecond)
}

func TestAggregatorReportsBuildErrors(t *testing.T) {
	a, _ := newTestAggregator(t, context.Background(), 10)
	assert.ErrorIs(t, a.emitDirect(EventType, "e", []float64{1}, 1, nil, false), ErrUnsupportedType)
}
