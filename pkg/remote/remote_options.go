package remote

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for a remote store
type Option func(*Store)

// Fs holding local files
func Fs(fs afero.Fs) Option {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger for transfers
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// OpenOption configures how stores are built from configuration
type OpenOption func(*openOptions)

type openOptions struct {
	tracer opentracing.Tracer
	l      *zap.Logger
	fs     afero.Fs
}

// WithTracer sets the tracer of instrumented stores. Defaults to the global tracer.
func WithTracer(tr opentracing.Tracer) OpenOption {
	return func(o *openOptions) {
		o.tracer = tr
	}
}

// WithLogger sets the logger of the stores
func WithLogger(l *zap.Logger) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.l = l
		}
	}
}

// WithFs sets the file system holding local files
func WithFs(fs afero.Fs) OpenOption {
	return func(o *openOptions) {
		if fs != nil {
			o.fs = fs
		}
	}
}
