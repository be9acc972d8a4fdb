//go:build !linux && !darwin

package fsops

import "os"

// platformTimes falls back to mtime for atime/ctime on platforms whose
// os.FileInfo.Sys() does not expose a POSIX stat_t.
func platformTimes(info os.FileInfo) (atime, ctime int64) {
	m := info.ModTime().Unix()
	return m, m
}
