package engine

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrDispatchTimeout = errors.New("dispatch timed out")
	ErrDispatchClosed  = errors.New("dispatcher closed")
)

// Command is a unit of work marshaled into the engine's execution context.
type Command func()

// Dispatcher is how external goroutines reach an Engine safely. Commands go
// into a bounded channel consumed by a single worker loop, so everything
// that touches engine state runs on one goroutine in submission order. The
// engine never calls the dispatcher itself.
type Dispatcher struct {
	cmds chan Command
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewDispatcher starts the worker loop with a queue of the given depth.
// Depth below one is clamped to one.
func NewDispatcher(depth int) *Dispatcher {
	if depth < 1 {
		depth = 1
	}
	d := &Dispatcher{
		cmds: make(chan Command, depth),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case cmd := <-d.cmds:
			cmd()
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues cmd, blocking the caller up to timeout while the queue is
// full. A zero or negative timeout rejects immediately when the queue has
// no room. Submit never runs cmd on the calling goroutine.
func (d *Dispatcher) Submit(cmd Command, timeout time.Duration) error {
	if cmd == nil {
		return errors.New("nil command")
	}
	select {
	case <-d.quit:
		return ErrDispatchClosed
	default:
	}
	if timeout <= 0 {
		select {
		case <-d.quit:
			return ErrDispatchClosed
		case d.cmds <- cmd:
			return nil
		default:
			return ErrDispatchTimeout
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-d.quit:
		return ErrDispatchClosed
	case d.cmds <- cmd:
		return nil
	case <-timer.C:
		return ErrDispatchTimeout
	}
}

// Call submits fn and blocks until the worker has run it, returning fn's
// error. The timeout covers only admission to the queue, not fn itself.
func (d *Dispatcher) Call(fn func() error, timeout time.Duration) error {
	result := make(chan error, 1)
	err := d.Submit(func() { result <- fn() }, timeout)
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-d.done:
		// The worker may have run fn just before exiting.
		select {
		case err := <-result:
			return err
		default:
			return ErrDispatchClosed
		}
	}
}

// Close stops the worker loop and waits for it to exit. Commands still
// sitting in the queue are discarded; commands already running finish.
// Subsequent Submits fail with ErrDispatchClosed.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.quit) })
	<-d.done
}
