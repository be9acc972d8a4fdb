package streaming

import "strings"

// LineOptions configures the line reader on top of a ChunkSequence.
type LineOptions struct {
	Trim      bool
	SkipEmpty bool
}

// OpenLineReader wraps a chunked reader with a line splitter honoring
// "\n", "\r\n", and bare "\r" as separators (spec.md §4.5). The final
// unterminated segment, if any, is yielded once the underlying sequence
// is exhausted. The returned sequence closes the wrapped chunked reader
// itself — on exhaustion, on error, or when Cancel is called — so
// abandoning the line sequence early still releases the file handle.
func OpenLineReader(path string, rOpts ReaderOptions, lOpts LineOptions) (*ChunkSequence, func() error, error) {
	inner, _, err := OpenChunkedReader(path, rOpts)
	if err != nil {
		return nil, func() error { return nil }, err
	}

	splitter := &lineSplitter{opts: lOpts}
	seq := NewChunkSequence(func() ([]byte, bool, error) {
		for {
			if line, ok := splitter.pop(); ok {
				return line, true, nil
			}

			chunk, hasMore, err := inner.Next()
			if err != nil {
				return nil, false, err
			}
			if !hasMore {
				if line, ok := splitter.flush(); ok {
					return line, true, nil
				}
				return nil, false, nil
			}
			splitter.feed(chunk)
		}
	})
	seq.SetCloser(inner.Close)
	return seq, seq.Close, nil
}

// lineSplitter maintains a carry buffer across chunk boundaries and
// yields complete lines honoring \n, \r\n, and bare \r.
type lineSplitter struct {
	opts    LineOptions
	carry   []byte
	pending [][]byte
	done    bool
}

func (s *lineSplitter) feed(chunk []byte) {
	s.carry = append(s.carry, chunk...)
	s.extractLines()
}

// extractLines scans s.carry for separators and moves complete lines
// into s.pending, leaving any trailing partial line in s.carry.
func (s *lineSplitter) extractLines() {
	buf := s.carry
	start := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			s.pending = append(s.pending, buf[start:i])
			start = i + 1
		case '\r':
			if i+1 < len(buf) && buf[i+1] == '\n' {
				s.pending = append(s.pending, buf[start:i])
				start = i + 2
				i++
			} else if i+1 < len(buf) {
				// Bare \r with more data available: it is a complete
				// separator.
				s.pending = append(s.pending, buf[start:i])
				start = i + 1
			}
			// A \r as the very last byte might be the start of \r\n
			// split across chunks; leave it in carry.
		}
	}
	s.carry = append([]byte{}, buf[start:]...)
}

// pop returns one processed line, applying trim/skip-empty.
func (s *lineSplitter) pop() ([]byte, bool) {
	for len(s.pending) > 0 {
		line := s.pending[0]
		s.pending = s.pending[1:]
		out, keep := s.process(line)
		if keep {
			return out, true
		}
	}
	return nil, false
}

// flush yields the final unterminated carry segment, if any, once the
// producer is exhausted.
func (s *lineSplitter) flush() ([]byte, bool) {
	if s.done {
		return nil, false
	}
	s.done = true
	if len(s.carry) == 0 {
		return nil, false
	}
	line := s.carry
	s.carry = nil
	return s.process(line)
}

func (s *lineSplitter) process(line []byte) ([]byte, bool) {
	out := line
	if s.opts.Trim {
		out = []byte(strings.TrimSpace(string(out)))
	}
	if s.opts.SkipEmpty && len(out) == 0 {
		return nil, false
	}
	return out, true
}
