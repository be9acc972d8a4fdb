package loop

import (
	"github.com/FairForge/asyncfs/internal/metrics"
)

// AtomicExecutor runs a single indivisible filesystem operation. It
// takes no cancellation input: atomic ops cannot be cancelled
// (spec.md §5: "Atomic ops cannot be cancelled").
type AtomicExecutor func() (result any, err error)

// AddFileOperation registers an atomic operation record and offloads its
// execution to the worker pool. completion is invoked exactly once with
// the classified-or-nil error and the result.
func (l *Loop) AddFileOperation(kind OpKind, primary, secondary string, options Options, exec AtomicExecutor, completion func(error, any)) int64 {
	id := l.nextOpID.Add(1)
	rec := &opRecord{
		id:            id,
		kind:          kind,
		primaryPath:   primary,
		secondaryPath: secondary,
		options:       options,
		completion:    completion,
	}

	l.mu.Lock()
	l.ops[id] = rec
	l.mu.Unlock()
	metrics.IncOpsDispatched(string(kind))

	l.workers.submit(func() {
		result, err := exec()

		l.mu.Lock()
		_, stillLive := l.ops[id]
		delete(l.ops, id)
		l.mu.Unlock()

		if !stillLive {
			return
		}
		metrics.IncOpsCompleted(string(kind), err == nil)
		l.Schedule(func() { completion(err, result) })
	})

	return id
}

// StreamStep advances a streaming operation by one chunk. It returns
// done=true once the operation has nothing left to do (EOF reached,
// length budget exhausted, or a terminal error occurred).
type StreamStep func() (done bool, err error, result any)

// AddStreamingOperation registers a cooperatively-chunked operation. The
// loop calls step once per Tick until it reports done. cleanup runs only
// if the op is cancelled (CancelFileOperation or loop shutdown) — never
// on a normal or failed completion reached through step itself — so the
// caller should supply the partial-output deletion there for
// output-producing ops (spec.md §3 invariant 2), and have step release
// its own resources (close files, abort a failed write) before
// reporting done.
func (l *Loop) AddStreamingOperation(kind OpKind, primary, secondary string, options Options, step StreamStep, cleanup func(), completion func(error, any)) int64 {
	id := l.nextOpID.Add(1)
	rec := &opRecord{
		id:            id,
		kind:          kind,
		primaryPath:   primary,
		secondaryPath: secondary,
		options:       options,
		completion:    completion,
		cleanup:       cleanup,
	}
	rec.chunkStep = func(r *opRecord) bool {
		if r.cancelled.Load() {
			return true
		}
		done, err, result := step()
		if done {
			l.finishStreaming(r, err, result)
		}
		return done
	}

	l.mu.Lock()
	l.ops[id] = rec
	l.mu.Unlock()
	metrics.IncOpsDispatched(string(kind))

	return id
}

// finishStreaming runs when a streaming op's step reports done on a
// normal (non-cancelled) tick. It deliberately does NOT invoke
// rec.cleanup: that hook unlinks output-producing ops' partial files and
// must fire only on the cancellation path (CancelFileOperation,
// shutdown), never on a successful or merely-failed completion. Step
// closures are responsible for their own resource release (closing
// files, aborting a failed write) before reporting done.
func (l *Loop) finishStreaming(rec *opRecord, err error, result any) {
	l.mu.Lock()
	_, stillLive := l.ops[rec.id]
	delete(l.ops, rec.id)
	l.mu.Unlock()

	if !stillLive {
		return
	}
	metrics.IncOpsCompleted(string(rec.kind), err == nil)
	if rec.cancelled.Load() {
		return
	}
	completion := rec.completion
	l.Schedule(func() { completion(err, result) })
}

// advanceStreamingOps runs one chunk-step for every live streaming op,
// the per-tick phase described in spec.md §4.3 point 4.
func (l *Loop) advanceStreamingOps() {
	l.mu.Lock()
	recs := make([]*opRecord, 0, len(l.ops))
	for _, r := range l.ops {
		if r.chunkStep != nil {
			recs = append(recs, r)
		}
	}
	l.mu.Unlock()

	for _, r := range recs {
		r.chunkStep(r)
	}
}

// CancelFileOperation marks op as cancelled and removes it from
// scheduling. Returns whether the record existed and was not already
// completed.
func (l *Loop) CancelFileOperation(id int64) bool {
	l.mu.Lock()
	rec, ok := l.ops[id]
	if ok {
		delete(l.ops, id)
	}
	l.mu.Unlock()

	if !ok {
		return false
	}
	rec.cancelled.Store(true)
	metrics.IncOpsCancelled(string(rec.kind))
	if rec.cleanup != nil {
		rec.cleanup()
	}
	return true
}
