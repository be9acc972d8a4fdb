package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Accelerator wires an OS-level fsnotify watch onto a Manager so that a
// path with pending native events gets its next poll pulled forward
// instead of waiting out its full PollingInterval. This is the
// "OS-event-driven watching is an allowed optimization" path from
// spec.md §4.7: fsnotify events never themselves produce a callback —
// they only shrink the latency before the next stat-comparison poll
// runs, so the observable contract (poll, diff snapshot, dispatch)
// stays exactly as specified.
//
// fsnotify is declared in the teacher's go.mod but never imported
// there; this is its first real use in the lineage of this codebase.
type Accelerator struct {
	watcher *fsnotify.Watcher
	manager *Manager
	done    chan struct{}
}

// NewAccelerator starts watching path with fsnotify and returns an
// Accelerator the caller must Close when done.
func NewAccelerator(m *Manager, path string) (*Accelerator, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	a := &Accelerator{watcher: w, manager: m, done: make(chan struct{})}
	go a.run(path)
	return a, nil
}

func (a *Accelerator) run(path string) {
	for {
		select {
		case _, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			a.manager.pullForward(path)
		case _, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
		case <-a.done:
			return
		}
	}
}

// Close stops the underlying fsnotify watch.
func (a *Accelerator) Close() error {
	close(a.done)
	return a.watcher.Close()
}

// pullForward makes every watcher registered on path due on the next
// tick, regardless of its configured polling interval.
func (m *Manager) pullForward(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.watchers {
		if rec.path == path {
			rec.nextPoll = time.Time{}
		}
	}
}
