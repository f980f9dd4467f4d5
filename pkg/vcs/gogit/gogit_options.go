package gogit

import "go.uber.org/zap"

// Option for a go-git repository
type Option func(*Repository)

// Logger for repository operations
func Logger(l *zap.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.l = l
		}
	}
}
