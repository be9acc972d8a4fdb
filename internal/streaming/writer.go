package streaming

import (
	"os"
	"path/filepath"

	"github.com/FairForge/asyncfs/internal/fserrors"
)

// ChunkedWriter drives a producer against an output file one chunk at a
// time, matching the loop's per-chunk cancellation checkpoint (spec.md
// §4.5). Step must be called repeatedly until done is true; Close must
// always be called afterward, and Abort on cancellation instead of
// Close (it also unlinks the output, per spec.md §4.5's cancellation
// contract).
type ChunkedWriter struct {
	path      string
	f         *os.File
	produce   Producer
	written   int64
	opened    bool
	finalized bool
}

// WriterOptions configures a chunked write.
type WriterOptions struct {
	CreateDirectories bool
}

// NewChunkedWriter opens path for writing (optionally creating parent
// directories) and returns a writer that pulls chunks from produce.
func NewChunkedWriter(path string, produce Producer, opts WriterOptions) (*ChunkedWriter, error) {
	if opts.CreateDirectories {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fserrors.ClassifyOS("write_generator", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fserrors.ClassifyOS("write_generator", path, err)
	}
	return &ChunkedWriter{path: path, f: f, produce: produce, opened: true}, nil
}

// Step pulls and writes one chunk. done is true once the producer is
// exhausted; the caller must not call Step again afterward.
func (w *ChunkedWriter) Step() (done bool, err error) {
	chunk, ok, err := w.produce()
	if err != nil {
		return true, fserrors.ErrStreamFailed("write_generator", w.path, w.written, err)
	}
	if !ok {
		return true, nil
	}
	n, err := w.f.Write(chunk)
	w.written += int64(n)
	if err != nil {
		return true, fserrors.ErrStreamFailed("write_generator", w.path, w.written, err)
	}
	return false, nil
}

// BytesWritten returns the count written so far.
func (w *ChunkedWriter) BytesWritten() int64 { return w.written }

// Close flushes and closes the output file on normal completion. A
// writer that has been Closed is finalized: a later Abort call (e.g. a
// cancel arriving after completion has already been scheduled) must not
// unlink the output it just committed.
func (w *ChunkedWriter) Close() error {
	if !w.opened {
		return nil
	}
	w.opened = false
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fserrors.ClassifyOS("write_generator", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fserrors.ClassifyOS("write_generator", w.path, err)
	}
	w.finalized = true
	return nil
}

// Abort closes the output handle and unlinks the partial output, as
// required by spec.md §3 invariant 2 and §4.5's cancellation contract.
// It no-ops the unlink once the writer has already finalized via Close,
// and is otherwise fire-and-forget, swallowing errors from a concurrent
// unlink race (spec.md §9's note on racing with the final flush).
func (w *ChunkedWriter) Abort() {
	if w.opened {
		w.opened = false
		w.f.Close()
	}
	if w.finalized {
		return
	}
	_ = os.Remove(w.path)
}
