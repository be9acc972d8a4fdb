package streaming

// AutoBuffer wraps an upstream Producer, coalescing its yields until the
// accumulated length reaches at least size before yielding downstream,
// and yielding any residual once upstream is exhausted (spec.md §4.5).
// It is pure glue over the producer contract; no I/O.
func AutoBuffer(upstream Producer, size int) Producer {
	if size <= 0 {
		return upstream
	}

	var acc []byte
	exhausted := false

	return func() ([]byte, bool, error) {
		if exhausted && len(acc) == 0 {
			return nil, false, nil
		}
		for !exhausted && len(acc) < size {
			chunk, ok, err := upstream()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				exhausted = true
				break
			}
			acc = append(acc, chunk...)
		}

		if len(acc) == 0 {
			return nil, false, nil
		}

		out := acc
		acc = nil
		return out, true, nil
	}
}
