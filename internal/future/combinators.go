package future

import "sync"

// All fulfills with the positionally-indexed values of futures once all
// fulfill, or rejects with the first rejection. The other inputs are
// left running; AllCancellable is the variant that cancels still-pending
// inputs on first rejection.
func All(futures []*Future) *Future {
	out := New()
	n := len(futures)
	if n == 0 {
		out.Resolve([]any{})
		return out
	}

	values := make([]any, n)
	var mu sync.Mutex
	remaining := n
	settled := false

	for i, f := range futures {
		i := i
		f.Then(
			func(v any) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				if settled {
					return nil, nil
				}
				values[i] = v
				remaining--
				if remaining == 0 {
					settled = true
					out.Resolve(append([]any{}, values...))
				}
				return nil, nil
			},
			func(e error) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				if settled {
					return nil, nil
				}
				settled = true
				out.Reject(e)
				return nil, nil
			},
		)
	}
	return out
}

// AllCancellable wraps All but also cancels every still-pending input on
// first rejection.
func AllCancellable(futures []*Cancellable) *Future {
	plain := make([]*Future, len(futures))
	for i, c := range futures {
		plain[i] = c.Future
	}
	out := New()
	agg := All(plain)
	agg.Then(
		func(v any) (any, error) { out.Resolve(v); return nil, nil },
		func(e error) (any, error) {
			for _, c := range futures {
				if c.State() == Pending {
					c.Cancel()
				}
			}
			out.Reject(e)
			return nil, nil
		},
	)
	return out
}

// Race settles with the first settlement, fulfill or reject, among
// futures.
func Race(futures []*Future) *Future {
	out := New()
	var once sync.Once

	for _, f := range futures {
		f.Then(
			func(v any) (any, error) {
				once.Do(func() { out.Resolve(v) })
				return nil, nil
			},
			func(e error) (any, error) {
				once.Do(func() { out.Reject(e) })
				return nil, nil
			},
		)
	}
	return out
}

// Outcome is one entry of an AllSettled result.
type Outcome struct {
	Status string // "fulfilled" or "rejected"
	Value  any
	Reason error
}

// AllSettled fulfills with the outcome of every future, in positional
// order, and never itself rejects.
func AllSettled(futures []*Future) *Future {
	out := New()
	n := len(futures)
	if n == 0 {
		out.Resolve([]Outcome{})
		return out
	}

	outcomes := make([]Outcome, n)
	var mu sync.Mutex
	remaining := n

	for i, f := range futures {
		i := i
		f.Then(
			func(v any) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				outcomes[i] = Outcome{Status: "fulfilled", Value: v}
				remaining--
				if remaining == 0 {
					out.Resolve(append([]Outcome{}, outcomes...))
				}
				return nil, nil
			},
			func(e error) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				outcomes[i] = Outcome{Status: "rejected", Reason: e}
				remaining--
				if remaining == 0 {
					out.Resolve(append([]Outcome{}, outcomes...))
				}
				return nil, nil
			},
		)
	}
	return out
}

// Task produces a future when invoked.
type Task func() *Future

// Concurrent runs tasks with at most limit in flight at any moment.
// Results are returned in task order. Rejection of any task immediately
// rejects the combinator; not-yet-started tasks are skipped, in-flight
// tasks are left to run to completion.
func Concurrent(tasks []Task, limit int) *Future {
	out := New()
	n := len(tasks)
	if n == 0 {
		out.Resolve([]any{})
		return out
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]any, n)
	var mu sync.Mutex
	remaining := n
	settled := false
	next := 0
	var wg sync.WaitGroup

	var startNext func()
	startNext = func() {
		mu.Lock()
		if settled || next >= n {
			mu.Unlock()
			return
		}
		i := next
		next++
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			f := tasks[i]()
			v, err := f.Await()

			mu.Lock()
			if settled {
				mu.Unlock()
				return
			}
			if err != nil {
				settled = true
				mu.Unlock()
				out.Reject(err)
				return
			}
			results[i] = v
			remaining--
			done := remaining == 0
			mu.Unlock()

			if done {
				out.Resolve(append([]any{}, results...))
				return
			}
			startNext()
		}()
	}

	started := limit
	if started > n {
		started = n
	}
	for k := 0; k < started; k++ {
		startNext()
	}
	wg.Wait()
	return out
}

// Batch partitions tasks into consecutive groups of size, runs each
// group in order with full internal parallelism, and aggregates results
// in task order.
func Batch(tasks []Task, size int) *Future {
	out := New()
	n := len(tasks)
	if n == 0 {
		out.Resolve([]any{})
		return out
	}
	if size <= 0 {
		size = n
	}

	results := make([]any, n)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		group := tasks[start:end]
		futs := make([]*Future, len(group))
		for j, t := range group {
			futs[j] = t()
		}
		agg := All(futs)
		v, err := agg.Await()
		if err != nil {
			out.Reject(err)
			return out
		}
		vals := v.([]any)
		copy(results[start:end], vals)
	}
	out.Resolve(results)
	return out
}
