//go:build unix

package cache

import (
	"os"

	"golang.org/x/sys/unix"
)

// currentUmask reads the process umask: the only API sets it, so restore it right away.
func currentUmask() os.FileMode {
	old := unix.Umask(0)
	unix.Umask(old)
	return os.FileMode(old)
}
