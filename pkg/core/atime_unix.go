//go:build linux || darwin

package core

import (
	"os"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// accessTime of a file on the OS file system, or its modification time elsewhere
func accessTime(fs afero.Fs, path string, fi os.FileInfo) time.Time {
	if _, ok := fs.(*afero.OsFs); !ok {
		return fi.ModTime()
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fi.ModTime()
	}
	return time.Unix(st.Atim.Unix())
}
