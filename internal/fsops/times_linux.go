//go:build linux

package fsops

import (
	"os"
	"syscall"
)

// platformTimes extracts atime/ctime from the Linux stat_t, mirroring
// the build-tag convention of internal/drivers/xattr_unix.go in the
// teacher repo.
func platformTimes(info os.FileInfo) (atime, ctime int64) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime().Unix(), info.ModTime().Unix()
	}
	return stat.Atim.Sec, stat.Ctim.Sec
}
