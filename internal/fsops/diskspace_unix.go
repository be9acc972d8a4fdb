//go:build linux || darwin

package fsops

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// HasFreeSpace reports whether the filesystem holding path has at least
// needed free bytes, letting callers raise DiskFull proactively rather
// than discovering ENOSPC mid-write. Grounded on the same
// golang.org/x/sys/unix import the teacher uses for extended attributes
// in internal/drivers/xattr_unix.go.
func HasFreeSpace(path string, needed int64) (bool, error) {
	dir := filepath.Dir(path)
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return true, nil // best-effort: let the actual write surface the real error
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	return free >= needed, nil
}
