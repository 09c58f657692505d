package statsd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// dispatcher owns a bounded queue of datagrams and a worker goroutine that
// packs them into packets and writes them to the wrapped sink.
type dispatcher struct {
	sink          Sink
	queue         chan string
	maxPacketSize int
	logger        logrus.FieldLogger
	errorLimiter  *rate.Limiter
	stats         *dispatcherStats

	synchronousSends atomic.Uint64
	batchedSends     atomic.Uint64

	// mu guards closed: producers hold it shared while pushing, so nothing
	// lands in the queue after the final drain of shutdown.
	mu          sync.RWMutex
	closed      bool
	closing     chan struct{}
	interrupted atomic.Bool

	workerMu sync.Mutex
	worker   atomic.Pointer[worker]
}

func newDispatcher(ctx context.Context, sink Sink, o *BatchOptions, connType string) *dispatcher {
	d := &dispatcher{
		sink:          sink,
		queue:         make(chan string, o.BufferCapacity),
		maxPacketSize: o.MaxPacketSize,
		logger:        o.Logger.WithField("component", "dispatcher"),
		errorLimiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		closing:       make(chan struct{}),
	}
	if o.StatisticsInterval > 0 {
		d.stats = newDispatcherStats(ctx, o.StatisticsInterval, connType, o.StatisticsBuilder, d.enqueue)
	}
	d.startWorker(processID())
	return d
}

func (d *dispatcher) startWorker(pid int) {
	w := newWorker(pid)
	d.worker.Store(w)
	go d.dispatch(w)
}

// healthcheck makes sure a worker serves this process, restarting it if
// needed. It returns false when the caller should send synchronously: the
// dispatcher is shutting down, or another goroutine is restarting the worker.
func (d *dispatcher) healthcheck() bool {
	if d.interrupted.Load() {
		return false
	}
	pid := processID()
	if w := d.worker.Load(); w != nil && w.pid == pid && w.alive() {
		return true
	}

	if !d.workerMu.TryLock() {
		return false
	}
	defer d.workerMu.Unlock()
	if d.interrupted.Load() {
		return false
	}

	w := d.worker.Load()
	switch {
	case w != nil && w.pid != pid:
		// The queue was filled by the parent process. Its datagrams were
		// either sent already or belong to the parent: drop them.
		d.logger.WithField("queued", len(d.queue)).Info("Restarting the dispatcher worker after fork")
		w.abandon()
		d.clearQueue()
	case w != nil && w.alive():
		return true
	default:
		d.logger.Info("Restarting the dispatcher worker")
	}
	d.startWorker(pid)
	return true
}

func (d *dispatcher) clearQueue() {
	for {
		select {
		case <-d.queue:
		default:
			return
		}
	}
}

// enqueue pushes without blocking, and sends on the caller's goroutine when
// the queue is full or no worker can serve it.
func (d *dispatcher) enqueue(datagram string) {
	d.mu.RLock()
	if !d.closed && d.healthcheck() {
		select {
		case d.queue <- datagram:
			d.mu.RUnlock()
			return
		default:
		}
	}
	d.mu.RUnlock()

	d.sink.Emit(datagram)
	d.synchronousSends.Add(1)
	if d.stats != nil {
		d.stats.incrementSynchronousSends()
	}
}

func (d *dispatcher) dispatch(w *worker) {
	defer close(w.done)
	for !d.interrupted.Load() {
		select {
		case <-w.stop:
			return
		default:
		}
		d.safeFlush(true, w.stop)
	}
	d.safeFlush(false, w.stop)
}

// safeFlush keeps the worker alive whatever the sink does.
func (d *dispatcher) safeFlush(blocking bool, stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			d.reportError(fmt.Errorf("%v", r))
		}
	}()
	d.flush(blocking, stop)
}

func (d *dispatcher) reportError(err error) {
	if d.errorLimiter.Allow() {
		d.logger.WithError(err).Error("The dispatcher worker encountered an error")
	}
}

func (d *dispatcher) pop(stop <-chan struct{}) (string, bool) {
	select {
	case datagram := <-d.queue:
		return datagram, true
	case <-d.closing:
		return d.popNonBlock()
	case <-stop:
		return "", false
	}
}

func (d *dispatcher) popNonBlock() (string, bool) {
	select {
	case datagram := <-d.queue:
		return datagram, true
	default:
		return "", false
	}
}

// flush drains the queue into packets. Datagrams are appended to the current
// packet in order while they fit; the first one that does not fit starts the
// next packet. A datagram larger than maxPacketSize is sent on its own.
// In blocking mode flush waits for datagrams until the queue is closed and
// empty, or stop is closed.
func (d *dispatcher) flush(blocking bool, stop <-chan struct{}) {
	packet := newPacketBuffer(d.maxPacketSize)
	var next string
	pending := false

	for {
		if !pending {
			var ok bool
			if blocking {
				next, ok = d.pop(stop)
			} else {
				next, ok = d.popNonBlock()
			}
			if !ok {
				return
			}
		}
		pending = false
		bufferLen := len(d.queue) + 1

		packet.reset()
		_ = packet.write(next)
		for {
			datagram, ok := d.popNonBlock()
			if !ok {
				break
			}
			if err := packet.write(datagram); err != nil {
				next, pending = datagram, true
				break
			}
		}

		packetSize := len(packet.bytes())
		d.sink.Emit(string(packet.bytes()))
		d.batchedSends.Add(1)
		if d.stats != nil {
			d.stats.incrementBatchedSends(bufferLen, packetSize, packet.elementCount)
			d.stats.maybeFlush(false)
		}
	}
}

// shutdown stops accepting datagrams, waits up to wait for the worker to
// drain the queue, then drains what is left on the calling goroutine.
func (d *dispatcher) shutdown(wait time.Duration) {
	d.interrupted.Store(true)
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.closing)
	}
	d.mu.Unlock()

	if w := d.worker.Load(); w != nil && w.alive() {
		select {
		case <-w.done:
		case <-time.After(wait):
			d.logger.WithField("wait", wait).Warn("Dispatcher worker did not finish in time")
		}
	}
	d.flush(false, nil)
}
