package future

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_FulfillsWithPositionalValues(t *testing.T) {
	f1, f2, f3 := New(), New(), New()
	out := All([]*Future{f1, f2, f3})

	f2.Resolve("b")
	f1.Resolve("a")
	f3.Resolve("c")

	v, err := out.Await()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestAll_RejectsWithFirstRejection(t *testing.T) {
	f1, f2 := New(), New()
	out := All([]*Future{f1, f2})

	wantErr := errors.New("f1 failed")
	f1.Reject(wantErr)
	f2.Resolve("ignored")

	_, err := out.Await()
	assert.Same(t, wantErr, err)
}

func TestAll_EmptyInputFulfillsImmediately(t *testing.T) {
	out := All(nil)
	v, err := out.Await()
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestRace_SettlesWithFirstSettlement(t *testing.T) {
	slow, fast := New(), New()
	out := Race([]*Future{slow, fast})

	fast.Resolve("fast wins")
	go func() {
		time.Sleep(10 * time.Millisecond)
		slow.Resolve("too slow")
	}()

	v, err := out.Await()
	require.NoError(t, err)
	assert.Equal(t, "fast wins", v)
}

func TestAllSettled_PreservesLengthAndOrder(t *testing.T) {
	ok := New()
	bad := New()
	ok2 := New()

	out := AllSettled([]*Future{ok, bad, ok2})

	ok.Resolve("x")
	bad.Reject(errors.New("missing1"))
	ok2.Resolve("y")

	v, err := out.Await()
	require.NoError(t, err)

	outcomes := v.([]Outcome)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "fulfilled", outcomes[0].Status)
	assert.Equal(t, "x", outcomes[0].Value)
	assert.Equal(t, "rejected", outcomes[1].Status)
	assert.Equal(t, "fulfilled", outcomes[2].Status)
}

func TestAllSettled_NeverRejects(t *testing.T) {
	bad := New()
	out := AllSettled([]*Future{bad})
	bad.Reject(errors.New("any failure"))

	_, err := out.Await()
	assert.NoError(t, err)
}

func TestConcurrent_RespectsLimitAndOrder(t *testing.T) {
	// Arrange
	var mu = struct {
		active, maxActive int
	}{}
	var guard = make(chan struct{}, 1)
	guard <- struct{}{}

	makeTask := func(i int) Task {
		return func() *Future {
			f := New()
			go func() {
				<-guard
				mu.active++
				if mu.active > mu.maxActive {
					mu.maxActive = mu.active
				}
				guard <- struct{}{}

				time.Sleep(5 * time.Millisecond)

				<-guard
				mu.active--
				guard <- struct{}{}

				f.Resolve(i)
			}()
			return f
		}
	}

	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = makeTask(i)
	}

	// Act
	out := Concurrent(tasks, 2)
	v, err := out.Await()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []any{0, 1, 2, 3, 4, 5}, v)
	assert.LessOrEqual(t, mu.maxActive, 2)
}

func TestConcurrent_RejectsOnFirstTaskFailure(t *testing.T) {
	wantErr := errors.New("task 1 failed")
	tasks := []Task{
		func() *Future { return Resolved(1) },
		func() *Future { return RejectedWith(wantErr) },
		func() *Future { return Resolved(3) },
	}

	out := Concurrent(tasks, 3)
	_, err := out.Await()

	assert.Same(t, wantErr, err)
}

func TestBatch_RunsGroupsInOrder(t *testing.T) {
	var order []int
	var mu struct{}
	_ = mu

	makeTask := func(i int) Task {
		return func() *Future {
			order = append(order, i)
			return Resolved(i * 10)
		}
	}

	tasks := []Task{makeTask(0), makeTask(1), makeTask(2), makeTask(3), makeTask(4)}

	out := Batch(tasks, 2)
	v, err := out.Await()

	require.NoError(t, err)
	assert.Equal(t, []any{0, 10, 20, 30, 40}, v)
}
