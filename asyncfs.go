// Package asyncfs is a non-blocking facade over filesystem operations:
// every call returns a future/promise immediately and the actual I/O is
// driven by a cooperative event loop (internal/loop), offloaded to a
// worker pool so the loop itself never blocks on a syscall.
//
// Package-level functions forward to a process-wide handler singleton
// (internal/handler), mirroring the way cmd/vaultaire/main.go wires a
// single top-level driver/logger pair for the whole process.
package asyncfs

import (
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/asyncfs/internal/future"
	"github.com/FairForge/asyncfs/internal/handler"
	"github.com/FairForge/asyncfs/internal/streaming"
	"github.com/FairForge/asyncfs/internal/watcher"
)

// Options configures an operation call. The zero value is sane defaults
// for every operation (spec.md §6).
type Options = handler.Options

// EventKind categorizes a watcher callback invocation.
type EventKind = watcher.EventKind

// WatchCallback receives watcher events.
type WatchCallback = watcher.Callback

// Producer is the pull contract for WriteFromGenerator.
type Producer = streaming.Producer

// ChunkSequence is the lazy, one-shot iterator returned by
// ReadFromGenerator and ReadLines.
type ChunkSequence = streaming.ChunkSequence

const (
	Created  = watcher.Created
	Modified = watcher.Modified
	Deleted  = watcher.Deleted
)

// Configure installs the logger and watcher poll-rate ceiling used by
// the process-wide handler. Call once at startup, before any operation.
func Configure(log *zap.Logger, maxWatcherPollsPerSecond int) {
	handler.Configure(log, maxWatcherPollsPerSecond)
}

// Reset tears down and recreates the process-wide handler and its
// event loop. Exposed for tests and for embedders that need a clean
// slate between runs.
func Reset() {
	handler.Reset()
}

// RunLoop drives the event loop until it has no pending work, or Stop
// is called. Callers typically run this in its own goroutine.
func RunLoop() {
	handler.GetHandler().Loop().Run()
}

// StopLoop halts RunLoop's driving goroutine.
func StopLoop() {
	handler.GetHandler().Loop().Stop()
}

// Tick advances the loop by exactly one pass: drain ready callbacks,
// fire due timers, poll due watchers, advance streaming ops by one
// chunk each. Exposed so callers can drive the loop themselves instead
// of using RunLoop/StopLoop.
func Tick() {
	handler.GetHandler().Loop().Tick()
}

// Read reads path's contents, honoring Options.Offset/Length.
func Read(path string, opts Options) *future.Future {
	return handler.GetHandler().Read(path, opts)
}

// Write writes data to path atomically.
func Write(path string, data []byte, opts Options) *future.Future {
	return handler.GetHandler().Write(path, data, opts)
}

// Append appends data to path.
func Append(path string, data []byte) *future.Future {
	return handler.GetHandler().Append(path, data)
}

// Exists reports whether path exists. Never rejects.
func Exists(path string) *future.Future {
	return handler.GetHandler().Exists(path)
}

// GetStats returns stat information for path.
func GetStats(path string) *future.Future {
	return handler.GetHandler().GetStats(path)
}

// Delete removes path.
func Delete(path string) *future.Future {
	return handler.GetHandler().Delete(path)
}

// Copy copies src to dst in one atomic operation.
func Copy(src, dst string) *future.Future {
	return handler.GetHandler().Copy(src, dst)
}

// Rename moves oldpath to newpath.
func Rename(oldpath, newpath string) *future.Future {
	return handler.GetHandler().Rename(oldpath, newpath)
}

// CreateDirectory creates path, recursively if Options.Recursive is set.
func CreateDirectory(path string, opts Options) *future.Future {
	return handler.GetHandler().CreateDirectory(path, opts)
}

// RemoveDirectory removes path and its contents.
func RemoveDirectory(path string) *future.Future {
	return handler.GetHandler().RemoveDirectory(path)
}

// ReadStream reads path's contents one chunk per loop tick, as a
// cancellable operation. Cancelling stops the read early.
func ReadStream(path string, opts Options) *future.Cancellable {
	return handler.GetHandler().ReadStream(path, opts)
}

// WriteStream writes data to path one chunk per loop tick. Cancelling
// unlinks the partial output.
func WriteStream(path string, data []byte, opts Options) *future.Cancellable {
	return handler.GetHandler().WriteStream(path, data, opts)
}

// WriteFromGenerator streams output pulled from produce, auto-buffering
// when Options.BufferSize > 0. Cancelling unlinks the partial output.
func WriteFromGenerator(path string, produce Producer, opts Options) *future.Cancellable {
	return handler.GetHandler().WriteFromGenerator(path, produce, opts)
}

// CopyStream streams src to dst one chunk per tick. Cancelling unlinks
// the partial destination.
func CopyStream(src, dst string, opts Options) *future.Cancellable {
	return handler.GetHandler().CopyStream(src, dst, opts)
}

// ReadFromGenerator opens path and resolves with a ChunkSequence the
// caller pulls raw chunks from.
func ReadFromGenerator(path string, opts Options) *future.Future {
	return handler.GetHandler().ReadFromGenerator(path, opts)
}

// ReadLines opens path and resolves with a ChunkSequence that yields
// whole lines.
func ReadLines(path string, opts Options) *future.Future {
	return handler.GetHandler().ReadLines(path, opts)
}

// Watch registers a polling watcher on path and returns its id.
func Watch(path string, cb WatchCallback, opts Options) string {
	return handler.GetHandler().Watch(path, cb, opts)
}

// Unwatch removes a watcher by id.
func Unwatch(id string) bool {
	return handler.GetHandler().Unwatch(id)
}

// AddTimer schedules fn to run once after delay has elapsed, driven by
// the loop's own tick, not a separate OS timer goroutine.
func AddTimer(delay time.Duration, fn func()) int64 {
	return handler.GetHandler().Loop().AddTimer(delay, fn)
}

// AddPeriodicTimer schedules fn to run every period, up to maxFires
// times (0 means unbounded).
func AddPeriodicTimer(period time.Duration, fn func(), maxFires int) int64 {
	return handler.GetHandler().Loop().AddPeriodicTimer(period, fn, maxFires)
}

// RemoveTimer cancels a pending timer by id.
func RemoveTimer(id int64) bool {
	return handler.GetHandler().Loop().RemoveTimer(id)
}

// All resolves once every future resolves, or rejects as soon as any
// one of them rejects.
func All(futures []*future.Future) *future.Future {
	return future.All(futures)
}

// Race resolves or rejects with whichever future settles first.
func Race(futures []*future.Future) *future.Future {
	return future.Race(futures)
}

// AllSettled resolves once every future has settled, fulfilled or
// rejected, collecting each outcome instead of short-circuiting.
func AllSettled(futures []*future.Future) *future.Future {
	return future.AllSettled(futures)
}

// Concurrent runs tasks with at most limit in flight at any time.
func Concurrent(tasks []future.Task, limit int) *future.Future {
	return future.Concurrent(tasks, limit)
}

// Batch runs tasks sequentially in groups of size, rejecting and
// stopping early if any group fails.
func Batch(tasks []future.Task, size int) *future.Future {
	return future.Batch(tasks, size)
}

// Task is a thunk producing a future, the unit Concurrent and Batch
// operate on.
type Task = future.Task
