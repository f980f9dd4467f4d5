package index

import "go.uber.org/zap"

// Option for the object index
type Option func(*ObjectIndex)

// Logger for the object index
func Logger(l *zap.Logger) Option {
	return func(x *ObjectIndex) {
		if l != nil {
			x.l = l
		}
	}
}
