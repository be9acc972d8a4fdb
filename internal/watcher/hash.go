package watcher

import (
	"os"

	"golang.org/x/crypto/blake2b"
)

// defaultHash computes a content hash for the watch_content option,
// using golang.org/x/crypto/blake2b — a dependency the teacher already
// carries for its internal/crypto package, repurposed here for fast
// whole-file digests instead of at-rest encryption.
func defaultHash(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(data)
	return sum[:], nil
}
