// Package streaming implements the chunked reader/writer, the lazy
// chunk sequence contract, the line splitter, and the auto-buffering
// adapter described in spec.md §4.5-4.6.
package streaming

import (
	"sync"

	"github.com/FairForge/asyncfs/internal/fserrors"
)

// Producer is the pull-producer contract: each invocation returns the
// next chunk, or ok=false at end-of-stream, or a non-nil err on failure.
type Producer func() (chunk []byte, ok bool, err error)

// ChunkSequence is the lazy chunk sequence handed back to callers of
// readFromGenerator / readLines. It is iterable exactly once: Next
// drains the underlying producer, and cancellation poisons further
// pulls with fserrors.ErrCancelled (spec.md §4.6). A sequence opened
// against a file releases the handle itself — via Close, wired with
// SetCloser — the moment Next reports exhaustion or an error, or Cancel
// is called; callers never need to track a separate close function.
type ChunkSequence struct {
	mu        sync.Mutex
	produce   Producer
	cancelled bool
	finished  bool
	closer    func() error
	closeOnce sync.Once
	closeErr  error
}

// NewChunkSequence wraps a Producer as a one-shot ChunkSequence.
func NewChunkSequence(produce Producer) *ChunkSequence {
	return &ChunkSequence{produce: produce}
}

// SetCloser attaches the resource-release hook Next/Cancel/Close invoke
// at most once. Must be called before the sequence is iterated.
func (s *ChunkSequence) SetCloser(closer func() error) {
	s.closer = closer
}

// Close releases the sequence's underlying resource, if any. Safe to
// call more than once or concurrently with Next/Cancel; only the first
// call's result is kept.
func (s *ChunkSequence) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer()
		}
	})
	return s.closeErr
}

// Next pulls the next chunk. ok is false once the sequence is exhausted,
// at which point (or on error) the sequence closes itself.
func (s *ChunkSequence) Next() (chunk []byte, ok bool, err error) {
	s.mu.Lock()
	cancelled, finished := s.cancelled, s.finished
	s.mu.Unlock()
	if cancelled {
		return nil, false, fserrors.ErrCancelled
	}
	if finished {
		return nil, false, nil
	}
	chunk, ok, err = s.produce()
	if !ok || err != nil {
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
		_ = s.Close()
	}
	return chunk, ok, err
}

// Cancel invalidates the sequence and releases its resources;
// subsequent Next calls return fserrors.ErrCancelled regardless of what
// the underlying producer would have yielded.
func (s *ChunkSequence) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	_ = s.Close()
}

// Collect drains the sequence into a single concatenated byte slice,
// used by the streaming read-all convenience (spec.md §4.5).
func (s *ChunkSequence) Collect() ([]byte, error) {
	var out []byte
	for {
		chunk, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, chunk...)
	}
}
