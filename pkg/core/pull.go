package core

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/index"
	"github.com/oneconcern/gitfat/pkg/model"
	"github.com/oneconcern/gitfat/pkg/vcs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pull downloads fat objects from the primary store and restores them in the working tree.
//
// With explicit files, each one is resolved through HEAD and restored, fetching its content
// when not cached. Without files, every indexed object available remotely but not cached is
// downloaded then restored, and cached objects whose working file still holds a stub are restored.
//
// Objects which cannot be resolved or found remotely are reported as skipped.
func (e *Engine) Pull(ctx context.Context, files ...string) (Report, error) {
	var rp reporter
	if err := e.requirePrimary(); err != nil {
		return rp.report(e.dryRun), err
	}
	if err := e.cache.Ensure(); err != nil {
		return rp.report(e.dryRun), err
	}
	var err error
	if len(files) > 0 {
		err = e.pullFiles(ctx, files, &rp)
	} else {
		err = e.pullAll(ctx, &rp)
	}
	return rp.report(e.dryRun), err
}

func (e *Engine) pullFiles(ctx context.Context, files []string, rp *reporter) error {
	objs := make([]model.FatObject, 0, len(files))
	for _, file := range files {
		obj, err := e.lookup(ctx, file)
		if err != nil {
			if errors.Is(err, status.ErrNotTracked) || errors.Is(err, status.ErrNotAStub) {
				e.l.Info("git-fat pull: skipping", zap.String("path", file), zap.Error(err))
				skipped := model.FatObject{Path: file}
				if rel, rerr := e.relPath(file); rerr == nil {
					skipped.Path = rel
				}
				rp.skipped(skipped, err)
				continue
			}
			return err
		}
		objs = append(objs, obj)
	}

	missing := make(map[string]struct{})
	absent := make(map[string]struct{})
	for _, obj := range objs {
		if e.cache.Contains(obj.Digest) {
			continue
		}
		_, seen := missing[obj.Digest]
		_, gone := absent[obj.Digest]
		if seen || gone {
			continue
		}
		has, err := e.primary.Has(ctx, obj.Digest)
		if err != nil {
			return err
		}
		if !has {
			absent[obj.Digest] = struct{}{}
			continue
		}
		missing[obj.Digest] = struct{}{}
	}

	errs := e.download(ctx, sortedKeys(missing), rp)
	for _, obj := range objs {
		if _, gone := absent[obj.Digest]; gone {
			e.l.Info("git-fat pull: object not found on remote store", zap.String("path", obj.Path), zap.String("object", obj.Digest))
			rp.skipped(obj, status.ErrRemoteMissing.Wrapf("%s", obj.Path))
			continue
		}
		e.l.Info("git-fat pull: pulling", zap.String("object", obj.Digest), zap.String("path", obj.Path))
		errs = multierr.Append(errs, e.restoreOrSkip(ctx, obj, rp))
	}
	return errs
}

func (e *Engine) pullAll(ctx context.Context, rp *reporter) error {
	indexed, err := e.index.ListIndexed(ctx)
	if err != nil {
		return err
	}
	cached, err := e.cache.List()
	if err != nil {
		return err
	}
	remoteKeys, err := e.primary.List(ctx)
	if err != nil {
		return err
	}

	candidates := make(map[string]struct{})
	for digest := range indexed.Digests() {
		if _, ok := cached[digest]; ok {
			continue
		}
		if _, ok := remoteKeys[digest]; ok {
			candidates[digest] = struct{}{}
		}
	}

	var pending []model.FatObject
	for _, obj := range indexed.Sorted() {
		_, isCached := cached[obj.Digest]
		_, isCandidate := candidates[obj.Digest]
		switch {
		case isCandidate:
			pending = append(pending, obj)
		case !isCached:
			e.l.Info("git-fat pull: object found neither locally nor remotely, skipping", zap.String("path", obj.Path), zap.String("object", obj.Digest))
			rp.skipped(obj, status.ErrRemoteMissing.Wrapf("%s", obj.Path))
		case e.holdsStub(obj):
			pending = append(pending, obj)
		default:
			e.l.Debug("git-fat pull: found locally, skipping", zap.String("path", obj.Path))
		}
	}
	if len(pending) == 0 {
		e.l.Info("git-fat pull: nothing to pull")
		return nil
	}

	errs := e.download(ctx, sortedKeys(candidates), rp)
	for _, obj := range pending {
		errs = multierr.Append(errs, e.restoreOrSkip(ctx, obj, rp))
	}
	return errs
}

// restoreOrSkip restores an object when its content is cached, and reports it as skipped otherwise
func (e *Engine) restoreOrSkip(ctx context.Context, obj model.FatObject, rp *reporter) error {
	if !e.cache.Contains(obj.Digest) {
		if e.dryRun {
			e.l.Info("git-fat pull: would restore", zap.String("path", obj.Path), zap.String("object", obj.Digest))
			return nil
		}
		reason := status.ErrCacheMiss.Wrapf("%s", obj.Path)
		rp.skipped(obj, reason)
		e.l.Info("git-fat pull: cannot restore", zap.String("path", obj.Path), zap.Error(reason))
		return nil
	}
	if err := e.Restore(ctx, obj); err != nil {
		e.l.Error("git-fat pull: restore failed", zap.String("path", obj.Path), zap.Error(err))
		return err
	}
	if !e.dryRun {
		rp.restored(obj.Path)
	}
	return nil
}

// lookup resolves a path given on the command line through the tree of HEAD
func (e *Engine) lookup(ctx context.Context, file string) (model.FatObject, error) {
	rel, err := e.relPath(file)
	if err != nil {
		return model.FatObject{}, err
	}
	obj, err := e.index.Lookup(ctx, rel)
	switch {
	case err == nil:
		return obj, nil
	case errors.Is(err, vcs.ErrNotTracked):
		return model.FatObject{}, status.ErrNotTracked.Wrapf("%s", rel)
	case errors.Is(err, index.ErrNotAStub):
		return model.FatObject{}, status.ErrNotAStub.Wrapf("%s", rel)
	default:
		return model.FatObject{}, err
	}
}
