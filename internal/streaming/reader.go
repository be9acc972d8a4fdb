package streaming

import (
	"io"
	"os"

	"github.com/FairForge/asyncfs/internal/fserrors"
)

// DefaultChunkSize is the default streaming read chunk size from
// spec.md §6.
const DefaultChunkSize = 8192

// ReaderOptions configures a chunked read.
type ReaderOptions struct {
	Offset    int64
	Length    int64 // -1 means unbounded
	ChunkSize int
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// OpenChunkedReader opens path and returns a ChunkSequence yielding
// chunks of opts.ChunkSize honoring Offset and Length (spec.md §4.5).
// The sequence releases the file handle itself on exhaustion, on error,
// or when Cancel is called (spec.md §5 "scoped acquisition with
// guaranteed release"); the second return value is the same release
// hook, exposed directly for callers (e.g. the streaming-read combinator)
// that need to release the handle without routing through the sequence.
func OpenChunkedReader(path string, opts ReaderOptions) (*ChunkSequence, func() error, error) {
	opts = opts.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, func() error { return nil }, fserrors.ClassifyOS("read_generator", path, err)
	}
	if opts.Offset > 0 {
		if _, err := f.Seek(opts.Offset, io.SeekStart); err != nil {
			f.Close()
			return nil, func() error { return nil }, fserrors.ClassifyOS("read_generator", path, err)
		}
	}

	remaining := opts.Length
	unbounded := opts.Length < 0
	buf := make([]byte, opts.ChunkSize)

	seq := NewChunkSequence(func() ([]byte, bool, error) {
		if !unbounded && remaining <= 0 {
			return nil, false, nil
		}
		want := int64(len(buf))
		if !unbounded && remaining < want {
			want = remaining
		}
		n, err := f.Read(buf[:want])
		if n > 0 && !unbounded {
			remaining -= int64(n)
		}
		if n == 0 {
			if err == io.EOF || err == nil {
				return nil, false, nil
			}
			return nil, false, fserrors.ClassifyOS("read_generator", path, err)
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		return chunk, true, nil
	})

	seq.SetCloser(f.Close)
	return seq, seq.Close, nil
}
