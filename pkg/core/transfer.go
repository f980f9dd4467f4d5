package core

import (
	"context"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"io"
	"sort"
	"sync"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/remote"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// forEach runs fn on every key, with at most e.concurrency calls in flight.
//
// A failing key does not stop the others: all errors are combined once every key has been processed.
func (e *Engine) forEach(ctx context.Context, keys []string, fn func(context.Context, string) error) error {
	var (
		mu   sync.Mutex
		errs error
	)
	p := pool.New().WithMaxGoroutines(e.concurrency)
	for _, key := range keys {
		p.Go(func() {
			err := ctx.Err()
			if err == nil {
				err = fn(ctx, key)
			}
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		})
	}
	p.Wait()
	return errs
}

// fetch downloads an object from a store into the cache, checking its digest
func (e *Engine) fetch(ctx context.Context, from *remote.Store, digest string) error {
	if e.cache.Contains(digest) {
		return nil
	}
	tmp, err := e.cache.TempFile()
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err = tmp.Close(); err != nil {
		return err
	}
	inserted := false
	defer func() {
		if !inserted {
			_ = e.fs.Remove(tmpPath)
		}
	}()

	if err = from.Download(ctx, digest, tmpPath); err != nil {
		return err
	}
	got, err := e.hashFile(tmpPath)
	if err != nil {
		return err
	}
	if got != digest {
		return status.ErrDigestMismatch.Wrapf("expected %s, got %s", digest, got)
	}
	if _, err = e.cache.Insert(tmpPath, digest); err != nil {
		return err
	}
	inserted = true
	return nil
}

func (e *Engine) hashFile(path string) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New() // nolint: gosec
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// download fetches digests from the primary store into the cache
func (e *Engine) download(ctx context.Context, digests []string, rp *reporter) error {
	return e.forEach(ctx, digests, func(ctx context.Context, digest string) error {
		if e.dryRun {
			e.l.Info("git-fat pull: would download", zap.String("object", digest))
			rp.downloaded(digest)
			return nil
		}
		e.l.Info("git-fat pull: downloading", zap.String("object", digest))
		if err := e.fetch(ctx, e.primary, digest); err != nil {
			e.l.Error("git-fat pull: download failed", zap.String("object", digest), zap.Error(err))
			return err
		}
		rp.downloaded(digest)
		return nil
	})
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
