//go:build !windows

package fsys

import "golang.org/x/sys/unix"

// deviceOf returns the device id holding path
func deviceOf(path string) (uint64, bool) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, false
	}
	return uint64(stat.Dev), true
}
