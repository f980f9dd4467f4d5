// Package core synchronizes fat objects between the working tree, the local
// cache and the remote stores.
package core

import (
	"github.com/oneconcern/gitfat/pkg/cache"
	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/index"
	"github.com/oneconcern/gitfat/pkg/remote"
	"github.com/oneconcern/gitfat/pkg/vcs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// FilterName is the name of the git filter driver handling fat files
	FilterName = "fat"

	// CleanCommand is the command registered as the clean filter
	CleanCommand = "git-fat filter-clean"

	// SmudgeCommand is the command registered as the smudge filter
	SmudgeCommand = "git-fat filter-smudge"

	defaultFileMode = 0644
)

// Engine runs git-fat operations on a repository
type Engine struct {
	repo    vcs.Repository
	index   *index.ObjectIndex
	cache   *cache.Cache
	primary *remote.Store
	publish *remote.Store

	fs          afero.Fs
	l           *zap.Logger
	dryRun      bool
	concurrency int
	cacheOpts   []cache.Option
}

// New engine for a repository
func New(repo vcs.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:        repo,
		fs:          afero.NewOsFs(),
		l:           zap.NewNop(),
		concurrency: 1,
	}
	for _, apply := range opts {
		apply(e)
	}

	e.index = index.New(repo, index.Logger(e.l))
	e.cache = cache.New(cache.DefaultDir(repo.GitDir()),
		append([]cache.Option{cache.Fs(e.fs), cache.Logger(e.l)}, e.cacheOpts...)...,
	)
	return e
}

// Cache of fat objects
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Index of fat objects
func (e *Engine) Index() *index.ObjectIndex {
	return e.index
}

func (e *Engine) requirePrimary() error {
	if e.primary == nil {
		return status.ErrNoRemote
	}
	return nil
}
