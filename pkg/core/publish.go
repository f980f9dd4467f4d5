package core

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const headRevision = "HEAD"

// PublishAdded uploads the fat objects added in ref relative to HEAD to the publish store,
// keyed by their path in the repository.
//
// Objects missing from the cache are fetched from the primary store first. The primary
// store is never written to.
func (e *Engine) PublishAdded(ctx context.Context, ref string) (Report, error) {
	var rp reporter
	if e.publish == nil {
		return rp.report(e.dryRun), status.ErrNoPublishStore
	}

	added, err := e.index.ListAdded(ctx, headRevision, ref)
	if err != nil {
		return rp.report(e.dryRun), err
	}
	if len(added) == 0 {
		e.l.Info("git-fat publish: nothing to publish", zap.String("ref", ref))
		return rp.report(e.dryRun), nil
	}
	if err = e.cache.Ensure(); err != nil {
		return rp.report(e.dryRun), err
	}

	byPath := make(map[string]model.FatObject, len(added))
	var errs error
	for _, obj := range added.Sorted() {
		if !e.cache.Contains(obj.Digest) {
			if ferr := e.fetchForPublish(ctx, obj); ferr != nil {
				errs = multierr.Append(errs, ferr)
				rp.skipped(obj, ferr)
				continue
			}
		}
		byPath[obj.Path] = obj
	}

	errs = multierr.Append(errs, e.forEach(ctx, sortedObjectPaths(byPath), func(ctx context.Context, path string) error {
		obj := byPath[path]
		fields := []zap.Field{zap.String("path", path), zap.String("object", obj.Digest), zap.Stringer("store", e.publish)}
		if e.dryRun {
			e.l.Info("git-fat publish: would publish to smudgestore", fields...)
			rp.uploaded(path)
			return nil
		}
		e.l.Info("git-fat publish: publishing to smudgestore", fields...)
		if err := e.publish.Upload(ctx, e.cache.Path(obj.Digest), path); err != nil {
			e.l.Error("git-fat publish: upload failed", append(fields, zap.Error(err))...)
			return err
		}
		rp.uploaded(path)
		return nil
	}))
	return rp.report(e.dryRun), errs
}

func (e *Engine) fetchForPublish(ctx context.Context, obj model.FatObject) error {
	if e.primary == nil {
		e.l.Info("git-fat publish: object not cached and no remote store configured", zap.String("path", obj.Path))
		return status.ErrCacheMiss.Wrapf("%s", obj.Path)
	}
	has, err := e.primary.Has(ctx, obj.Digest)
	if err != nil {
		return err
	}
	if !has {
		e.l.Error("git-fat publish: object not found on remote store", zap.String("path", obj.Path), zap.String("object", obj.Digest))
		return status.ErrRemoteMissing.Wrapf("%s", obj.Path)
	}
	if e.dryRun {
		e.l.Info("git-fat publish: would fetch", zap.String("path", obj.Path), zap.String("object", obj.Digest))
		return nil
	}
	e.l.Info("git-fat publish: fetching", zap.String("path", obj.Path), zap.String("object", obj.Digest))
	return e.fetch(ctx, e.primary, obj.Digest)
}

func sortedObjectPaths(objs map[string]model.FatObject) []string {
	set := make(map[string]struct{}, len(objs))
	for p := range objs {
		set[p] = struct{}{}
	}
	return sortedKeys(set)
}
