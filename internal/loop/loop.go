// Package loop implements the single-threaded cooperative event loop
// that owns filesystem-operation scheduling: a ready queue of
// micro-tasks, a timer heap, an FS-operation registry, and watcher
// polling ticks, per spec.md §4.3.
package loop

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/asyncfs/internal/metrics"
)

// OpKind enumerates the filesystem operation kinds the loop can drive.
type OpKind string

const (
	OpRead           OpKind = "read"
	OpWrite          OpKind = "write"
	OpAppend         OpKind = "append"
	OpDelete         OpKind = "delete"
	OpExists         OpKind = "exists"
	OpStat           OpKind = "stat"
	OpMkdir          OpKind = "mkdir"
	OpRmdir          OpKind = "rmdir"
	OpCopy           OpKind = "copy"
	OpRename         OpKind = "rename"
	OpReadGenerator  OpKind = "read_generator"
	OpWriteGenerator OpKind = "write_generator"
	OpReadStream     OpKind = "read_stream"
	OpCopyStream     OpKind = "copy_stream"
)

// Options carries the per-operation configuration map described in
// spec.md §6.
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
	Mode              uint32
}

// opRecord is the loop-internal bookkeeping for one dispatched operation.
type opRecord struct {
	id            int64
	kind          OpKind
	primaryPath   string
	secondaryPath string
	payload       any
	options       Options
	completion    func(error, any)
	cancelled     atomic.Bool
	chunkStep     func(rec *opRecord) (done bool) // for streaming ops, advances one chunk per tick
	cleanup       func()
}

// Loop is the single-threaded cooperative dispatcher. All exported
// methods are safe to call from any goroutine; the ready tasks, timers,
// watcher polls and streaming steps they schedule run on whichever
// goroutine calls Tick (directly or through Run), and atomic ops run on
// the worker pool.
type Loop struct {
	log *zap.Logger

	mu       sync.Mutex
	ready    []func()
	timers   timerHeap
	timerIdx map[int64]*timerTask
	ops      map[int64]*opRecord
	watchers WatcherDriver

	nextOpID    atomic.Int64
	nextTimerID atomic.Int64

	workers *workerPool

	stopCh  chan struct{}
	stopped atomic.Bool
	runWg   sync.WaitGroup
}

// WatcherDriver is the subset of internal/watcher.Manager the loop needs
// to drive polling on every tick, kept as an interface here to avoid a
// dependency cycle between internal/loop and internal/watcher.
type WatcherDriver interface {
	PollDue(now time.Time)
}

var (
	instance *Loop
	instOnce sync.Once
	instMu   sync.Mutex
)

// GetInstance returns the process-wide shared loop, creating it lazily.
func GetInstance() *Loop {
	instMu.Lock()
	defer instMu.Unlock()
	if instance == nil {
		instance = New(zap.NewNop())
	}
	return instance
}

// SetLogger swaps the logger used by the shared instance; intended for
// wiring during process startup, before any operations are submitted.
func SetLogger(log *zap.Logger) {
	GetInstance().log = log
}

// Reset tears down all queues, cancels all in-flight operations
// (invoking their cancel handlers via cleanup), and clears watchers.
// Used by tests and by the handler facade's own Reset.
func Reset() {
	instMu.Lock()
	defer instMu.Unlock()
	if instance != nil {
		instance.shutdown()
	}
	instance = New(zap.NewNop())
}

// New constructs a standalone Loop. Most callers should use GetInstance;
// New is exposed for tests and for callers that want an isolated loop
// rather than the process-wide singleton.
func New(log *zap.Logger) *Loop {
	l := &Loop{
		log:      log,
		timerIdx: make(map[int64]*timerTask),
		ops:      make(map[int64]*opRecord),
		stopCh:   make(chan struct{}),
	}
	l.workers = newWorkerPool(4, log)
	return l
}

func (l *Loop) shutdown() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopCh)
	}
	l.mu.Lock()
	for _, rec := range l.ops {
		rec.cancelled.Store(true)
		if rec.cleanup != nil {
			cleanup := rec.cleanup
			l.mu.Unlock()
			cleanup()
			l.mu.Lock()
		}
	}
	l.ops = make(map[int64]*opRecord)
	l.ready = nil
	l.timers = nil
	l.timerIdx = make(map[int64]*timerTask)
	l.mu.Unlock()
	l.workers.stop()
}

// AttachWatcherDriver wires the watcher manager the loop should poll on
// each tick. internal/watcher.NewManager(loop) calls back into this.
func (l *Loop) AttachWatcherDriver(w WatcherDriver) {
	l.mu.Lock()
	l.watchers = w
	l.mu.Unlock()
}

// Schedule enqueues fn as a ready micro-task.
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	l.ready = append(l.ready, fn)
	l.mu.Unlock()
}

// Tick executes one pass: drain the ready queue, fire due timers, poll
// due watchers, and advance every streaming op by one chunk.
func (l *Loop) Tick() {
	now := time.Now()

	l.mu.Lock()
	ready := l.ready
	l.ready = nil
	queueDepth := len(ready)
	opCount := len(l.ops)
	l.mu.Unlock()
	metrics.SetQueueDepth(float64(queueDepth))
	metrics.SetInFlightOps(float64(opCount))
	for _, fn := range ready {
		fn()
	}

	l.fireDueTimers(now)

	l.mu.Lock()
	watchers := l.watchers
	l.mu.Unlock()
	if watchers != nil {
		watchers.PollDue(now)
	}

	l.advanceStreamingOps()
}

// Run drives ticks until no ready work, timers, or ops remain, or Stop
// is called. Registered watchers do not keep Run going.
func (l *Loop) Run() {
	for {
		if l.stopped.Load() {
			return
		}
		l.Tick()
		if l.idle() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (l *Loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ready) == 0 && len(l.timers) == 0 && len(l.ops) == 0
}

// Stop halts Run's driving loop. Idempotent.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Await pumps Tick while awaiter blocks, giving callers a
// loop-driven suspension point (spec.md §4.1's "the loop must re-enter").
func (l *Loop) Await(awaiter func() (any, error)) (any, error) {
	done := make(chan struct{})
	var value any
	var err error
	go func() {
		value, err = awaiter()
		close(done)
	}()
	for {
		select {
		case <-done:
			return value, err
		default:
			l.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}
