//go:build !linux && !darwin

package core

import (
	"os"
	"time"

	"github.com/spf13/afero"
)

func accessTime(_ afero.Fs, _ string, fi os.FileInfo) time.Time {
	return fi.ModTime()
}
