package loop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLoop() *Loop {
	return New(zap.NewNop())
}

func TestLoop_AtomicOperationCompletesOnce(t *testing.T) {
	// Arrange
	l := newTestLoop()
	done := make(chan struct{})
	var gotErr error
	var gotResult any

	// Act
	l.AddFileOperation(OpRead, "/tmp/a", "", Options{}, func() (any, error) {
		return "contents", nil
	}, func(err error, result any) {
		gotErr, gotResult = err, result
		close(done)
	})

	for i := 0; i < 50; i++ {
		l.Tick()
		select {
		case <-done:
			goto settled
		default:
			time.Sleep(time.Millisecond)
		}
	}
settled:

	// Assert
	require.NoError(t, gotErr)
	assert.Equal(t, "contents", gotResult)
}

func TestLoop_AtomicOperationPropagatesError(t *testing.T) {
	l := newTestLoop()
	done := make(chan struct{})
	var gotErr error
	wantErr := errors.New("disk error")

	l.AddFileOperation(OpWrite, "/tmp/b", "", Options{}, func() (any, error) {
		return nil, wantErr
	}, func(err error, result any) {
		gotErr = err
		close(done)
	})

	for i := 0; i < 50; i++ {
		l.Tick()
		select {
		case <-done:
			goto settled
		default:
			time.Sleep(time.Millisecond)
		}
	}
settled:

	assert.Same(t, wantErr, gotErr)
}

func TestLoop_CancelFileOperationRemovesRecord(t *testing.T) {
	// Arrange
	l := newTestLoop()
	block := make(chan struct{})
	id := l.AddStreamingOperation(OpReadGenerator, "/tmp/c", "", Options{}, func() (bool, error, any) {
		<-block
		return true, nil, nil
	}, func() {}, func(error, any) {})

	// Act
	ok := l.CancelFileOperation(id)
	close(block)

	// Assert
	assert.True(t, ok)
	assert.False(t, l.CancelFileOperation(id), "second cancel of the same id must report false")
}

func TestLoop_StreamingOperationAdvancesOneChunkPerTick(t *testing.T) {
	// Arrange
	l := newTestLoop()
	chunks := []string{"a", "b", "c"}
	i := 0
	var seen []string
	done := make(chan struct{})

	l.AddStreamingOperation(OpReadGenerator, "/tmp/d", "", Options{}, func() (bool, error, any) {
		if i >= len(chunks) {
			return true, nil, nil
		}
		seen = append(seen, chunks[i])
		i++
		return i >= len(chunks), nil, nil
	}, func() {}, func(error, any) {
		close(done)
	})

	// Act: tick once per expected chunk plus settle.
	for n := 0; n < len(chunks)+2; n++ {
		l.Tick()
	}
	<-done

	// Assert
	assert.Equal(t, chunks, seen)
}

func TestLoop_TimerFiresAfterDelay(t *testing.T) {
	l := newTestLoop()
	fired := make(chan struct{})

	l.AddTimer(5*time.Millisecond, func() { close(fired) })

	deadline := time.After(500 * time.Millisecond)
	for {
		l.Tick()
		select {
		case <-fired:
			return
		case <-deadline:
			t.Fatal("timer never fired")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestLoop_PeriodicTimerRespectsMaxFires(t *testing.T) {
	l := newTestLoop()
	fires := 0
	done := make(chan struct{})

	l.AddPeriodicTimer(2*time.Millisecond, func() {
		fires++
		if fires == 3 {
			close(done)
		}
	}, 3)

	deadline := time.After(500 * time.Millisecond)
	for {
		l.Tick()
		select {
		case <-done:
			time.Sleep(10 * time.Millisecond)
			l.Tick()
			assert.Equal(t, 3, fires)
			return
		case <-deadline:
			t.Fatal("periodic timer did not fire 3 times")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestLoop_RemoveTimerPreventsFiring(t *testing.T) {
	l := newTestLoop()
	fired := false

	id := l.AddTimer(5*time.Millisecond, func() { fired = true })
	removed := l.RemoveTimer(id)

	time.Sleep(20 * time.Millisecond)
	l.Tick()

	assert.True(t, removed)
	assert.False(t, fired)
}

func TestReset_ClearsSharedInstance(t *testing.T) {
	GetInstance().AddTimer(time.Hour, func() {})
	Reset()

	l := GetInstance()
	assert.Empty(t, l.ops)
}
