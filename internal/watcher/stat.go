package watcher

import "os"

func defaultStat(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot{exists: false}, nil
		}
		return snapshot{}, err
	}
	return snapshot{exists: true, size: info.Size(), mtime: info.ModTime()}, nil
}
