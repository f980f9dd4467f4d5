package core

import (
	"github.com/oneconcern/gitfat/pkg/cache"
	"github.com/oneconcern/gitfat/pkg/remote"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for the git-fat engine
type Option func(*Engine)

// Logger for the engine and the components it builds
func Logger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// Fs holding the working tree and the cache. Defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(e *Engine) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// Remote sets the primary store, holding fat objects keyed by digest
func Remote(s *remote.Store) Option {
	return func(e *Engine) {
		e.primary = s
	}
}

// PublishStore sets the store receiving added files, keyed by path
func PublishStore(s *remote.Store) Option {
	return func(e *Engine) {
		e.publish = s
	}
}

// DryRun logs transfers and restores without performing them
func DryRun(enabled bool) Option {
	return func(e *Engine) {
		e.dryRun = enabled
	}
}

// Concurrency sets the number of concurrent transfers. It defaults to 1.
func Concurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// CacheOptions are passed to the cache built by the engine
func CacheOptions(opts ...cache.Option) Option {
	return func(e *Engine) {
		e.cacheOpts = append(e.cacheOpts, opts...)
	}
}
