// Package future implements the two-tier deferred-result abstraction
// driving the async filesystem engine: a plain atomic Future and a
// Cancellable future layered on top of it. Both settle exactly once and
// fire their continuations in registration order.
package future

import "sync"

// State is the settlement state of a Future.
type State int32

const (
	// Pending means the future has not yet settled.
	Pending State = iota
	// Fulfilled means the future settled with a value.
	Fulfilled
	// Rejected means the future settled with an error.
	Rejected
)

type continuation struct {
	onFulfilled func(any) (any, error)
	onRejected  func(error) (any, error)
	next        *Future
}

// Future is a deferred result with single-assignment settlement and an
// ordered list of continuations.
type Future struct {
	mu     sync.Mutex
	state  State
	value  any
	err    error
	conts  []continuation
}

// New returns a new Pending future.
func New() *Future {
	return &Future{state: Pending}
}

// Resolved returns a future already Fulfilled with value.
func Resolved(value any) *Future {
	f := New()
	f.Resolve(value)
	return f
}

// RejectedWith returns a future already Rejected with err.
func RejectedWith(err error) *Future {
	f := New()
	f.Reject(err)
	return f
}

// State returns the current settlement state.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Resolve transitions the future to Fulfilled. Illegal transitions (the
// future has already left Pending) are silently ignored, per spec.md §4.1.
func (f *Future) Resolve(value any) {
	f.settle(Fulfilled, value, nil)
}

// Reject transitions the future to Rejected. Illegal transitions are
// silently ignored.
func (f *Future) Reject(err error) {
	f.settle(Rejected, nil, err)
}

func (f *Future) settle(state State, value any, err error) {
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return
	}
	f.state = state
	f.value = value
	f.err = err
	conts := f.conts
	f.conts = nil
	f.mu.Unlock()

	for _, c := range conts {
		f.fire(c)
	}
}

// fire invokes a single continuation's handler and settles its attached
// child future. Firing happens synchronously on the thread that settles
// the parent (or immediately at registration time if the parent was
// already settled), matching spec.md §4.1's ordering guarantee.
func (f *Future) fire(c continuation) {
	state, value, err := f.snapshot()

	var result any
	var herr error
	switch state {
	case Fulfilled:
		if c.onFulfilled != nil {
			result, herr = c.onFulfilled(value)
		} else {
			c.next.Resolve(value)
			return
		}
	case Rejected:
		if c.onRejected != nil {
			result, herr = c.onRejected(err)
		} else {
			c.next.Reject(err)
			return
		}
	default:
		return
	}

	if herr != nil {
		c.next.Reject(herr)
		return
	}
	if inner, ok := result.(*Future); ok {
		adopt(inner, c.next)
		return
	}
	c.next.Resolve(result)
}

// adopt makes dst settle however src eventually settles (flatMap).
func adopt(src, dst *Future) {
	src.Then(
		func(v any) (any, error) { dst.Resolve(v); return nil, nil },
		func(e error) (any, error) { dst.Reject(e); return nil, nil },
	)
}

func (f *Future) snapshot() (State, any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.value, f.err
}

// Then registers success/failure handlers and returns a new Future that
// settles from their outcome. Either handler may be nil to pass through
// the corresponding settlement unchanged. If a handler returns a *Future,
// the returned future adopts it; if a handler panics-free returns an
// error, the returned future rejects with it.
func (f *Future) Then(onFulfilled func(any) (any, error), onRejected func(error) (any, error)) *Future {
	next := New()
	c := continuation{onFulfilled: onFulfilled, onRejected: onRejected, next: next}

	f.mu.Lock()
	settled := f.state != Pending
	if !settled {
		f.conts = append(f.conts, c)
	}
	f.mu.Unlock()

	if settled {
		f.fire(c)
	}
	return next
}

// Catch registers a rejection handler only.
func (f *Future) Catch(onRejected func(error) (any, error)) *Future {
	return f.Then(nil, onRejected)
}

// Finally registers a handler that runs on both settlement paths without
// altering the propagated value, unless it itself returns an error.
func (f *Future) Finally(onSettled func()) *Future {
	return f.Then(
		func(v any) (any, error) { onSettled(); return v, nil },
		func(e error) (any, error) { onSettled(); return nil, e },
	)
}

// Await blocks the calling goroutine until the future settles, then
// returns its value or its error. It does not itself drive any event
// loop: callers that need loop-driven progress should use
// internal/loop.Loop.Await, which pumps ticks while waiting on this
// channel-based primitive.
func (f *Future) Await() (any, error) {
	done := make(chan struct{})
	var value any
	var err error
	f.Then(
		func(v any) (any, error) { value = v; close(done); return nil, nil },
		func(e error) (any, error) { err = e; close(done); return nil, nil },
	)
	<-done
	return value, err
}
