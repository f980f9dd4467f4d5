package core

import (
	"context"

	"go.uber.org/zap"
)

// Init prepares a repository for fat files: it creates the cache directory and
// registers the clean and smudge filters, unless some fat filter is configured already.
func (e *Engine) Init(_ context.Context) error {
	if err := e.cache.Ensure(); err != nil {
		return err
	}
	registered, err := e.repo.FilterRegistered(FilterName)
	if err != nil {
		return err
	}
	if registered {
		e.l.Debug("git-fat filter already configured")
		return nil
	}
	if err = e.repo.RegisterFilter(FilterName, CleanCommand, SmudgeCommand); err != nil {
		return err
	}
	e.l.Info("git-fat: filter configured", zap.String("filter", FilterName), zap.String("cache", e.cache.Dir()))
	return nil
}
