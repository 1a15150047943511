// Package nav serializes screen-mutating navigation requests relative to
// render passes. Navigation rebuilds the active screen's object tree; doing
// that synchronously from inside a render pass can invalidate objects the
// pass still references. The queue defers any request submitted while a
// render is in progress and replays the backlog at a single post-render
// flush point, in submission order.
package nav

import (
	"errors"
	"fmt"
)

var (
	ErrQueueFull  = errors.New("navigation queue full")
	ErrNoExecutor = errors.New("navigation executor not configured")
)

// RequestKind identifies a navigation request.
type RequestKind int

const (
	RequestGoto RequestKind = iota
	RequestPush
	RequestPop
	RequestModal
	RequestCloseModal
)

var requestNames = map[RequestKind]string{
	RequestGoto:       "goto",
	RequestPush:       "push",
	RequestPop:        "pop",
	RequestModal:      "modal",
	RequestCloseModal: "close_modal",
}

func (k RequestKind) String() string {
	if s, ok := requestNames[k]; ok {
		return s
	}
	return "invalid"
}

// Executor performs one navigation request. It runs either synchronously
// from Submit (idle) or from EndRender's flush (deferred).
type Executor func(kind RequestKind, arg string) error

type request struct {
	kind RequestKind
	arg  string
}

// Queue is a two-state machine: idle, where submissions execute
// synchronously, and rendering, where they are buffered FIFO. Not safe for
// concurrent use; it belongs to the single engine context.
type Queue struct {
	executor  Executor
	pending   []request
	maxDepth  int
	rendering bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithMaxDepth bounds the number of requests that may be pending during a
// render pass. Zero or negative means unbounded.
func WithMaxDepth(n int) Option {
	return func(q *Queue) { q.maxDepth = n }
}

// New returns an idle Queue that dispatches through executor.
func New(executor Executor, opts ...Option) *Queue {
	q := &Queue{executor: executor}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit executes the request immediately when idle, or appends it to the
// pending FIFO when a render pass is in progress. A bounded queue rejects
// the overflowing request with ErrQueueFull and stays unchanged.
func (q *Queue) Submit(kind RequestKind, arg string) error {
	if q.executor == nil {
		return ErrNoExecutor
	}
	if !q.rendering {
		return q.executor(kind, arg)
	}
	if q.maxDepth > 0 && len(q.pending) >= q.maxDepth {
		return fmt.Errorf("%w: %d pending", ErrQueueFull, len(q.pending))
	}
	q.pending = append(q.pending, request{kind: kind, arg: arg})
	return nil
}

// BeginRender moves the queue to the rendering state. Calling it while
// already rendering is a programming error and panics.
func (q *Queue) BeginRender() {
	if q.rendering {
		panic("nav: BeginRender while already rendering")
	}
	q.rendering = true
}

// EndRender returns the queue to idle. With flush set, the pending requests
// run in their original submission order and the first executor error is
// returned after all of them have run; without it, the backlog is discarded
// untouched. Depth is zero afterwards either way.
func (q *Queue) EndRender(flush bool) error {
	q.rendering = false
	backlog := q.pending
	q.pending = nil
	if !flush {
		return nil
	}
	var firstErr error
	for _, r := range backlog {
		if err := q.executor(r.kind, r.arg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Reset discards any pending requests without executing them and returns
// the queue to idle. Callable from any state.
func (q *Queue) Reset() {
	q.pending = nil
	q.rendering = false
}

// Depth returns the number of pending requests. Always zero while idle.
func (q *Queue) Depth() int {
	return len(q.pending)
}

// Rendering reports whether a render pass is in progress.
func (q *Queue) Rendering() bool {
	return q.rendering
}
