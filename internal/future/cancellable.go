package future

import "sync"

// Cancelled is the terminal state unique to Cancellable futures.
// It is kept distinct from the base future.State enum so that a
// Cancellable can report Cancelled without perturbing State's zero value
// semantics for plain futures.
const Cancelled State = 99

// Cancellable extends Future with a Cancelled terminal state and a
// cancel-handler slot that may be set at most once.
type Cancellable struct {
	*Future

	mu            sync.Mutex
	cancelled     bool
	cancelHandler func()
	handlerSet    bool
}

// NewCancellable returns a new Pending cancellable future.
func NewCancellable() *Cancellable {
	return &Cancellable{Future: New()}
}

// IsCancelled reports whether the future has been cancelled.
func (c *Cancellable) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Cancel transitions the future to Cancelled if it has not already left
// Pending, then invokes the cancel handler if one is set. Safe to call
// multiple times; subsequent calls are no-ops. Invariant: once
// Cancelled, Resolve/Reject on the embedded Future becomes a no-op
// because settle() only accepts transitions out of Pending, and Cancel
// moves the embedded future out of Pending by setting its state to
// Cancelled directly and dropping its registered continuations.
func (c *Cancellable) Cancel() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.Future.mu.Lock()
	alreadySettled := c.Future.state != Pending
	if !alreadySettled {
		c.Future.state = Cancelled
	}
	conts := c.Future.conts
	c.Future.conts = nil
	c.Future.mu.Unlock()

	if alreadySettled {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	handler := c.cancelHandler
	c.mu.Unlock()

	// Continuations registered before cancellation receive no callback:
	// they simply never settle (per spec.md §3 invariant on Cancelled).
	_ = conts

	if handler != nil {
		handler()
	}
}

// SetCancelHandler installs fn as the cancel handler. If the future is
// already Cancelled, fn is invoked immediately. The slot is set at most
// once: calls after the first are ignored.
func (c *Cancellable) SetCancelHandler(fn func()) {
	c.mu.Lock()
	if c.handlerSet {
		c.mu.Unlock()
		return
	}
	c.cancelHandler = fn
	c.handlerSet = true
	alreadyCancelled := c.cancelled
	c.mu.Unlock()

	if alreadyCancelled {
		fn()
	}
}

// Then returns a new Cancellable whose own Cancel forwards to c's
// Cancel, so cancelling any node in a chain tears down the whole
// upstream chain (spec.md §4.1 "chaining preserves cancellability").
func (c *Cancellable) Then(onFulfilled func(any) (any, error), onRejected func(error) (any, error)) *Cancellable {
	child := NewCancellable()
	child.SetCancelHandler(c.Cancel)

	next := c.Future.Then(onFulfilled, onRejected)
	// Bridge: whatever `next` eventually does, reflect it onto child's
	// embedded future, unless child was already cancelled independently.
	next.Then(
		func(v any) (any, error) {
			if !child.IsCancelled() {
				child.Future.Resolve(v)
			}
			return nil, nil
		},
		func(e error) (any, error) {
			if !child.IsCancelled() {
				child.Future.Reject(e)
			}
			return nil, nil
		},
	)
	return child
}

// Await blocks until the future settles or is cancelled, returning the
// value, a boolean reporting cancellation, and an error.
func (c *Cancellable) Await() (value any, cancelled bool, err error) {
	if c.IsCancelled() {
		return nil, true, nil
	}
	v, e := c.Future.Await()
	if c.IsCancelled() {
		return nil, true, nil
	}
	return v, false, e
}
