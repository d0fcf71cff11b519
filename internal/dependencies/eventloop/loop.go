// Package eventloop runs posted work one item at a time on a single goroutine.
package eventloop

import (
	"fmt"
	"log/slog"
	"sync"
)

// Loop is an unbounded FIFO of closures executed in order on one goroutine.
// Posting never blocks, so it is safe from store notification callbacks.
type Loop struct {
	logger *slog.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []func()
	running   bool
	closed    bool
	processed uint64
	done      chan struct{}
}

// New starts a loop
func New(logger *slog.Logger) *Loop {
	l := &Loop{
		logger: logger,
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Post queues fn. It returns false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Broadcast()
	return true
}

// Flush blocks until everything posted before the call, and anything those
// items post in turn, has run. It must not be called from the loop itself.
func (l *Loop) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for (len(l.queue) > 0 || l.running) && !l.closed {
		l.cond.Wait()
	}
}

// Processed returns how many items have run
func (l *Loop) Processed() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed
}

// Close stops the loop after the item currently running. Queued items are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.running = true
		l.mu.Unlock()

		l.invoke(fn)

		l.mu.Lock()
		l.running = false
		l.processed++
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("event handler panicked", slog.String("panic", fmt.Sprint(rec)))
		}
	}()
	fn()
}
