package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager() *Manager {
	return NewManager(zap.NewNop(), 10000)
}

func TestManager_DetectsModification(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "w")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

	m := newTestManager()
	events := make(chan EventKind, 10)
	id := m.Watch(path, func(kind EventKind, p string) {
		events <- kind
	}, Options{PollingInterval: time.Millisecond, WatchSize: true})

	// Act: mutate after the initial snapshot, then poll repeatedly.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("initial plus more"), 0o644))

	var got EventKind
	for i := 0; i < 200; i++ {
		m.PollDue(time.Now())
		select {
		case got = <-events:
			goto done
		default:
			time.Sleep(time.Millisecond)
		}
	}
done:

	// Assert
	assert.Equal(t, Modified, got)
	assert.True(t, m.Unwatch(id))
}

func TestManager_UnwatchStopsFurtherCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	m := newTestManager()
	calls := 0
	id := m.Watch(path, func(kind EventKind, p string) {
		calls++
	}, Options{PollingInterval: time.Millisecond, WatchSize: true})

	require.True(t, m.Unwatch(id))

	require.NoError(t, os.WriteFile(path, []byte("a longer value"), 0o644))
	for i := 0; i < 20; i++ {
		m.PollDue(time.Now().Add(time.Duration(i) * time.Millisecond))
	}

	assert.Equal(t, 0, calls)
}

func TestManager_IndependentWatchersOnSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	m := newTestManager()
	var calls1, calls2 int
	m.Watch(path, func(kind EventKind, p string) { calls1++ }, Options{PollingInterval: time.Millisecond, WatchSize: true})
	id2 := m.Watch(path, func(kind EventKind, p string) { calls2++ }, Options{PollingInterval: time.Millisecond, WatchSize: true})

	m.Unwatch(id2)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("a bit longer"), 0o644))
	for i := 0; i < 50; i++ {
		m.PollDue(time.Now())
		time.Sleep(time.Millisecond)
	}

	assert.GreaterOrEqual(t, calls1, 1)
	assert.Equal(t, 0, calls2)
}

func TestManager_DetectsCreationAndDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new")

	m := newTestManager()
	events := make(chan EventKind, 10)
	m.Watch(path, func(kind EventKind, p string) { events <- kind }, Options{PollingInterval: time.Millisecond})

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	waitFor(t, m, events, Created)

	require.NoError(t, os.Remove(path))
	waitFor(t, m, events, Deleted)
}

func waitFor(t *testing.T, m *Manager, events chan EventKind, want EventKind) {
	t.Helper()
	for i := 0; i < 200; i++ {
		m.PollDue(time.Now())
		select {
		case got := <-events:
			require.Equal(t, want, got)
			return
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatalf("timed out waiting for %s event", want)
}
