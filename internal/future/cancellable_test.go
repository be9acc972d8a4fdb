package future

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellable_CancelInvokesHandlerOnce(t *testing.T) {
	// Arrange
	c := NewCancellable()
	calls := 0
	c.SetCancelHandler(func() { calls++ })

	// Act
	c.Cancel()
	c.Cancel()

	// Assert
	assert.Equal(t, 1, calls)
	assert.True(t, c.IsCancelled())
}

func TestCancellable_SetCancelHandlerAfterCancelFiresImmediately(t *testing.T) {
	c := NewCancellable()
	c.Cancel()

	calls := 0
	c.SetCancelHandler(func() { calls++ })

	assert.Equal(t, 1, calls)
}

func TestCancellable_CancelSuppressesResolve(t *testing.T) {
	c := NewCancellable()
	c.Cancel()
	c.Future.Resolve("late value")

	assert.True(t, c.IsCancelled())
	assert.Equal(t, Cancelled, c.State())
}

func TestCancellable_ChainPropagatesCancelUpstream(t *testing.T) {
	// Arrange
	parent := NewCancellable()
	parentCancelCalls := 0
	parent.SetCancelHandler(func() { parentCancelCalls++ })

	child := parent.Then(func(v any) (any, error) { return v, nil }, nil)

	// Act: cancelling the child must cancel the parent too.
	child.Cancel()

	// Assert
	assert.True(t, child.IsCancelled())
	assert.Equal(t, 1, parentCancelCalls)
}

func TestCancellable_AwaitReportsCancellation(t *testing.T) {
	c := NewCancellable()
	c.Cancel()

	v, cancelled, err := c.Await()

	assert.Nil(t, v)
	assert.True(t, cancelled)
	require.NoError(t, err)
}

func TestCancellable_AwaitReportsFulfilment(t *testing.T) {
	c := NewCancellable()
	c.Future.Resolve(7)

	v, cancelled, err := c.Await()

	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, 7, v)
}
