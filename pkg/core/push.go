package core

import (
	"context"

	"go.uber.org/zap"
)

// Push uploads fat objects which are indexed and cached, but absent from the primary store.
//
// Each digest is uploaded once, under its own name. Indexed objects missing from the cache are ignored.
func (e *Engine) Push(ctx context.Context) (Report, error) {
	var rp reporter
	if err := e.requirePrimary(); err != nil {
		return rp.report(e.dryRun), err
	}
	if err := e.cache.Ensure(); err != nil {
		return rp.report(e.dryRun), err
	}

	indexed, err := e.index.ListIndexed(ctx)
	if err != nil {
		return rp.report(e.dryRun), err
	}
	cached, err := e.cache.List()
	if err != nil {
		return rp.report(e.dryRun), err
	}
	remoteKeys, err := e.primary.List(ctx)
	if err != nil {
		return rp.report(e.dryRun), err
	}

	candidates := make(map[string]struct{})
	for digest := range indexed.Digests() {
		if _, ok := cached[digest]; ok {
			candidates[digest] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		e.l.Info("git-fat push: nothing to push")
		return rp.report(e.dryRun), nil
	}

	for digest := range candidates {
		if _, ok := remoteKeys[digest]; ok {
			delete(candidates, digest)
		}
	}
	if len(candidates) == 0 {
		e.l.Info("git-fat push: nothing to push")
		return rp.report(e.dryRun), nil
	}

	paths := make(map[string]string, len(candidates))
	for _, obj := range indexed.Sorted() {
		if _, ok := paths[obj.Digest]; !ok {
			paths[obj.Digest] = obj.Path
		}
	}

	err = e.forEach(ctx, sortedKeys(candidates), func(ctx context.Context, digest string) error {
		fields := []zap.Field{zap.String("path", paths[digest]), zap.String("object", digest)}
		if e.dryRun {
			e.l.Info("git-fat push: would upload", fields...)
			rp.uploaded(digest)
			return nil
		}
		e.l.Info("git-fat push: uploading", fields...)
		if err := e.primary.Upload(ctx, e.cache.Path(digest), digest); err != nil {
			e.l.Error("git-fat push: upload failed", append(fields, zap.Error(err))...)
			return err
		}
		rp.uploaded(digest)
		return nil
	})
	return rp.report(e.dryRun), err
}
