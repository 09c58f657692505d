package statsd

import "os"

// processID is swapped in tests to simulate a fork.
var processID = os.Getpid

// worker is the handle of one dispatcher goroutine. stop asks it to exit
// without draining, done is closed once it has exited.
type worker struct {
	stop chan struct{}
	done chan struct{}
	pid  int
}

func newWorker(pid int) *worker {
	return &worker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
		pid:  pid,
	}
}

func (w *worker) alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// abandon stops the worker and leaves whatever it was doing unfinished.
func (w *worker) abandon() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}
