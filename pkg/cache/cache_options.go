package cache

import (
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option to configure the cache
type Option func(*Cache)

// Fs sets the file system holding the cache (defaults to the OS file system)
func Fs(fs afero.Fs) Option {
	return func(c *Cache) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// Logger sets a logger for this cache
func Logger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.l = l
		}
	}
}

// Umask overrides the process umask applied to new entries
func Umask(mask os.FileMode) Option {
	return func(c *Cache) {
		c.umask = mask
		c.umaskSet = true
	}
}
