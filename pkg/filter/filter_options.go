package filter

import (
	"github.com/oneconcern/gitfat/pkg/stub"
	"go.uber.org/zap"
)

// Option to configure the filter engine
type Option func(*Engine)

// Logger sets a logger for the filters
func Logger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// WithBlockSize sets the size of streamed blocks. Sizes smaller than a stub are ignored.
func WithBlockSize(size int) Option {
	return func(e *Engine) {
		if size >= stub.MagicLen {
			e.blockSize = size
		}
	}
}
