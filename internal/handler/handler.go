// Package handler implements the FS handler facade from spec.md §4.4:
// it pairs each public operation with the right future flavor (atomic
// vs cancellable), registers the work with the event loop, installs
// cancel handlers that clean up partial output, and maps raw errors
// through internal/fserrors.
package handler

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/asyncfs/internal/fsops"
	"github.com/FairForge/asyncfs/internal/future"
	"github.com/FairForge/asyncfs/internal/loop"
	"github.com/FairForge/asyncfs/internal/streaming"
	"github.com/FairForge/asyncfs/internal/watcher"
)

// Options mirrors the configuration options recognized across
// operations in spec.md §6.
type Options struct {
	Offset            int64
	Length            int64
	HasLength         bool
	ChunkSize         int
	Trim              bool
	SkipEmpty         bool
	CreateDirectories bool
	BufferSize        int
	Recursive         bool
	Mode              os.FileMode
	PollingInterval   time.Duration
	WatchSize         bool
	WatchContent      bool
}

// Handler is the process-wide facade. A single instance is lazily
// created by GetHandler and may be torn down and rebuilt via Reset,
// exactly as spec.md §3 invariant 5 requires.
type Handler struct {
	loop    *loop.Loop
	watch   *watcher.Manager
	log     *zap.Logger
}

var (
	instance *Handler
	mu       sync.Mutex
)

// GetHandler returns the shared process-wide handler, creating it
// lazily.
func GetHandler() *Handler {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = newHandler(zap.NewNop())
	}
	return instance
}

// Configure swaps the logger and watcher poll-rate ceiling used by the
// shared handler. Intended for process startup, before any operations
// are submitted.
func Configure(log *zap.Logger, maxWatcherPollsPerSecond int) {
	mu.Lock()
	defer mu.Unlock()
	instance = newHandlerWithRate(log, maxWatcherPollsPerSecond)
}

// Reset tears down the shared handler's loop and watchers and creates a
// fresh one. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	loop.Reset()
	instance = newHandler(zap.NewNop())
}

func newHandler(log *zap.Logger) *Handler {
	return newHandlerWithRate(log, 1000)
}

func newHandlerWithRate(log *zap.Logger, maxPollsPerSecond int) *Handler {
	l := loop.GetInstance()
	loop.SetLogger(log)
	w := watcher.NewManager(log, maxPollsPerSecond)
	l.AttachWatcherDriver(w)
	return &Handler{loop: l, watch: w, log: log}
}

func (o Options) toLoopOptions() loop.Options {
	return loop.Options{
		Offset:            o.Offset,
		Length:            o.Length,
		HasLength:         o.HasLength,
		ChunkSize:         o.ChunkSize,
		Trim:              o.Trim,
		SkipEmpty:         o.SkipEmpty,
		CreateDirectories: o.CreateDirectories,
		BufferSize:        o.BufferSize,
		Recursive:         o.Recursive,
		Mode:              uint32(o.Mode),
	}
}

func lengthOrUnbounded(o Options) int64 {
	if o.HasLength {
		return o.Length
	}
	return -1
}

func chunkSizeOrDefault(n int) int {
	if n <= 0 {
		return streaming.DefaultChunkSize
	}
	return n
}

// --- Atomic operations ---

// Read reads a file's contents in full or within [offset, offset+length).
func (h *Handler) Read(path string, opts Options) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpRead, path, "", opts.toLoopOptions(), func() (any, error) {
		return fsops.Read(path, opts.Offset, lengthOrUnbounded(opts))
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Write writes data to path atomically.
func (h *Handler) Write(path string, data []byte, opts Options) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpWrite, path, "", opts.toLoopOptions(), func() (any, error) {
		return fsops.Write(path, data, opts.CreateDirectories)
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Append appends data to path.
func (h *Handler) Append(path string, data []byte) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpAppend, path, "", loop.Options{}, func() (any, error) {
		return fsops.Append(path, data)
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Exists reports whether path exists. Never rejects.
func (h *Handler) Exists(path string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpExists, path, "", loop.Options{}, func() (any, error) {
		return fsops.Exists(path)
	}, func(err error, result any) {
		if err != nil {
			f.Resolve(false)
			return
		}
		f.Resolve(result)
	})
	return f
}

// GetStats returns file stats for path.
func (h *Handler) GetStats(path string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpStat, path, "", loop.Options{}, func() (any, error) {
		return fsops.Stat(path)
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Delete removes path.
func (h *Handler) Delete(path string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpDelete, path, "", loop.Options{}, func() (any, error) {
		if err := fsops.Delete(path); err != nil {
			return nil, err
		}
		return true, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Copy copies src to dst atomically (non-streaming).
func (h *Handler) Copy(src, dst string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpCopy, src, dst, loop.Options{}, func() (any, error) {
		if err := fsops.Copy(src, dst); err != nil {
			return nil, err
		}
		return true, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// Rename moves oldpath to newpath.
func (h *Handler) Rename(oldpath, newpath string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpRename, oldpath, newpath, loop.Options{}, func() (any, error) {
		if err := fsops.Rename(oldpath, newpath); err != nil {
			return nil, err
		}
		return true, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// CreateDirectory creates path with the given mode, recursively if
// requested.
func (h *Handler) CreateDirectory(path string, opts Options) *future.Future {
	f := future.New()
	mode := opts.Mode
	if mode == 0 {
		mode = 0o755
	}
	h.loop.AddFileOperation(loop.OpMkdir, path, "", opts.toLoopOptions(), func() (any, error) {
		if err := fsops.Mkdir(path, mode, opts.Recursive); err != nil {
			return nil, err
		}
		return true, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// RemoveDirectory removes path recursively.
func (h *Handler) RemoveDirectory(path string) *future.Future {
	f := future.New()
	h.loop.AddFileOperation(loop.OpRmdir, path, "", loop.Options{}, func() (any, error) {
		if err := fsops.Rmdir(path); err != nil {
			return nil, err
		}
		return true, nil
	}, func(err error, result any) {
		settle(f, err, result)
	})
	return f
}

// settle resolves f with result, or rejects it with err, which is
// assumed to already be a classified fserrors value (fsops classifies
// at the source).
func settle(f *future.Future, err error, result any) {
	if err != nil {
		f.Reject(err)
		return
	}
	f.Resolve(result)
}

// --- Watcher ---

// Watch registers a polling watcher on path.
func (h *Handler) Watch(path string, cb watcher.Callback, opts Options) string {
	wopts := watcher.Options{
		PollingInterval: opts.PollingInterval,
		WatchSize:       true,
		WatchContent:    opts.WatchContent,
	}
	if opts.PollingInterval == 0 {
		wopts.PollingInterval = 100 * time.Millisecond
	}
	return h.watch.Watch(path, cb, wopts)
}

// Unwatch removes a watcher by id.
func (h *Handler) Unwatch(id string) bool {
	return h.watch.Unwatch(id)
}

// Loop exposes the underlying event loop, primarily so callers (and the
// static facade) can drive ticks / await futures.
func (h *Handler) Loop() *loop.Loop { return h.loop }
