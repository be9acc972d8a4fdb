package handler

import (
	"github.com/FairForge/asyncfs/internal/fserrors"
	"github.com/FairForge/asyncfs/internal/future"
	"github.com/FairForge/asyncfs/internal/loop"
	"github.com/FairForge/asyncfs/internal/streaming"
)

// ReadFromGenerator opens path and resolves with a *streaming.ChunkSequence
// the caller pulls from directly. Opening the file is the only part
// dispatched through the loop (it can fail); consuming the sequence
// happens off-loop by design (spec.md §4.6). The sequence releases the
// file handle itself on exhaustion, error, or Cancel, so discarding
// OpenChunkedReader's release hook here does not leak a descriptor.
func (h *Handler) ReadFromGenerator(path string, opts Options) *future.Future {
	f := future.New()
	rOpts := streaming.ReaderOptions{
		Offset:    opts.Offset,
		Length:    lengthOrUnbounded(opts),
		ChunkSize: chunkSizeOrDefault(opts.ChunkSize),
	}
	h.loop.AddFileOperation(loop.OpReadGenerator, path, "", opts.toLoopOptions(), func() (any, error) {
		seq, _, err := streaming.OpenChunkedReader(path, rOpts)
		if err != nil {
			return nil, err
		}
		return seq, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// ReadLines opens path and resolves with a *streaming.ChunkSequence that
// yields whole lines rather than raw chunks (spec.md §4.6). As with
// ReadFromGenerator, the sequence closes its underlying file itself, so
// the discarded release hook is not a leak.
func (h *Handler) ReadLines(path string, opts Options) *future.Future {
	f := future.New()
	rOpts := streaming.ReaderOptions{
		Offset:    opts.Offset,
		Length:    lengthOrUnbounded(opts),
		ChunkSize: chunkSizeOrDefault(opts.ChunkSize),
	}
	lOpts := streaming.LineOptions{Trim: opts.Trim, SkipEmpty: opts.SkipEmpty}
	h.loop.AddFileOperation(loop.OpReadGenerator, path, "", opts.toLoopOptions(), func() (any, error) {
		seq, _, err := streaming.OpenLineReader(path, rOpts, lOpts)
		if err != nil {
			return nil, err
		}
		return seq, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// ReadStream streams path's full contents chunk by chunk, one chunk per
// loop tick, accumulating into a single result. Cancelling stops the
// read and releases the file handle; no output exists to clean up for
// a read (spec.md §4.5).
func (h *Handler) ReadStream(path string, opts Options) *future.Cancellable {
	c := future.NewCancellable()
	rOpts := streaming.ReaderOptions{
		Offset:    opts.Offset,
		Length:    lengthOrUnbounded(opts),
		ChunkSize: chunkSizeOrDefault(opts.ChunkSize),
	}

	seq, closeFn, err := streaming.OpenChunkedReader(path, rOpts)
	if err != nil {
		c.Reject(err)
		return c
	}

	var collected []byte
	var id int64
	id = h.loop.AddStreamingOperation(loop.OpReadStream, path, "", opts.toLoopOptions(), func() (bool, error, any) {
		chunk, ok, serr := seq.Next()
		if serr != nil {
			return true, serr, nil
		}
		if !ok {
			return true, nil, collected
		}
		collected = append(collected, chunk...)
		return false, nil, nil
	}, func() {
		closeFn()
	}, func(err error, result any) {
		settleCancellable(c, err, result)
	})

	c.SetCancelHandler(func() {
		h.loop.CancelFileOperation(id)
	})
	return c
}

// WriteStream streams data to path one chunk at a time rather than in a
// single atomic write, allowing cancellation mid-write. Partial output
// is unlinked on cancel (spec.md §3 invariant 2).
func (h *Handler) WriteStream(path string, data []byte, opts Options) *future.Cancellable {
	chunkSize := chunkSizeOrDefault(opts.ChunkSize)
	offset := 0
	producer := func() ([]byte, bool, error) {
		if offset >= len(data) {
			return nil, false, nil
		}
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		offset = end
		return chunk, true, nil
	}
	return h.writeFromProducer(path, producer, opts)
}

// WriteFromGenerator streams writes pulled from an arbitrary producer,
// wrapping it with an auto-buffer when opts.BufferSize > 0 (spec.md
// §4.6's auto-buffering adapter).
func (h *Handler) WriteFromGenerator(path string, produce streaming.Producer, opts Options) *future.Cancellable {
	if opts.BufferSize > 0 {
		produce = streaming.AutoBuffer(produce, opts.BufferSize)
	}
	return h.writeFromProducer(path, produce, opts)
}

func (h *Handler) writeFromProducer(path string, produce streaming.Producer, opts Options) *future.Cancellable {
	c := future.NewCancellable()

	w, err := streaming.NewChunkedWriter(path, produce, streaming.WriterOptions{CreateDirectories: opts.CreateDirectories})
	if err != nil {
		c.Reject(err)
		return c
	}

	var id int64
	id = h.loop.AddStreamingOperation(loop.OpWriteGenerator, path, "", opts.toLoopOptions(), func() (bool, error, any) {
		done, serr := w.Step()
		if done {
			if serr != nil {
				w.Abort()
				return true, serr, nil
			}
			if cerr := w.Close(); cerr != nil {
				w.Abort()
				return true, cerr, nil
			}
			return true, nil, w.BytesWritten()
		}
		return false, nil, nil
	}, func() {
		w.Abort()
	}, func(err error, result any) {
		settleCancellable(c, err, result)
	})

	c.SetCancelHandler(func() {
		h.loop.CancelFileOperation(id)
	})
	return c
}

// CopyStream streams src to dst chunk by chunk instead of the atomic
// whole-file Copy. Cancelling unlinks the partial dst (spec.md §4.5).
func (h *Handler) CopyStream(src, dst string, opts Options) *future.Cancellable {
	c := future.NewCancellable()

	rOpts := streaming.ReaderOptions{Length: -1, ChunkSize: chunkSizeOrDefault(opts.ChunkSize)}
	seq, closeReader, err := streaming.OpenChunkedReader(src, rOpts)
	if err != nil {
		c.Reject(err)
		return c
	}

	w, err := streaming.NewChunkedWriter(dst, func() ([]byte, bool, error) {
		return seq.Next()
	}, streaming.WriterOptions{CreateDirectories: opts.CreateDirectories})
	if err != nil {
		closeReader()
		c.Reject(err)
		return c
	}

	var id int64
	id = h.loop.AddStreamingOperation(loop.OpCopyStream, src, dst, opts.toLoopOptions(), func() (bool, error, any) {
		done, serr := w.Step()
		if done {
			closeReader()
			if serr != nil {
				w.Abort()
				return true, serr, nil
			}
			if cerr := w.Close(); cerr != nil {
				w.Abort()
				return true, cerr, nil
			}
			return true, nil, w.BytesWritten()
		}
		return false, nil, nil
	}, func() {
		w.Abort()
		closeReader()
	}, func(err error, result any) {
		settleCancellable(c, err, result)
	})

	c.SetCancelHandler(func() {
		h.loop.CancelFileOperation(id)
	})
	return c
}

// settleCancellable resolves or rejects the Future embedded in c. Cancel
// already settles c.Future to the Cancelled state via Cancellable.Cancel,
// so a completion arriving afterward (a race the loop already guards
// against via opRecord.cancelled) is a silent no-op here too.
func settleCancellable(c *future.Cancellable, err error, result any) {
	if c.IsCancelled() {
		return
	}
	if err != nil {
		if err == fserrors.ErrCancelled {
			return
		}
		c.Reject(err)
		return
	}
	c.Resolve(result)
}
