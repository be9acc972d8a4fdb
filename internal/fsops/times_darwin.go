//go:build darwin

package fsops

import (
	"os"
	"syscall"
)

// platformTimes extracts atime/ctime from the Darwin stat_t.
func platformTimes(info os.FileInfo) (atime, ctime int64) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime().Unix(), info.ModTime().Unix()
	}
	return stat.Atimespec.Sec, stat.Ctimespec.Sec
}
