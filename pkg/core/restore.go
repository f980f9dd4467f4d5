package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Restore replaces the working tree file of a fat object with its cached content.
//
// Permission bits and timestamps of the file being replaced are carried over, then the
// index entry is refreshed. Restoring twice is harmless.
func (e *Engine) Restore(ctx context.Context, obj model.FatObject) error {
	if !e.cache.Contains(obj.Digest) {
		return status.ErrCacheMiss.Wrapf("%s (%s)", obj.Path, obj.Digest)
	}
	if e.dryRun {
		e.l.Info("git-fat pull: would restore", zap.String("path", obj.Path), zap.String("object", obj.Digest))
		return nil
	}
	e.l.Info("git-fat pull: restore", zap.String("path", obj.Path), zap.String("object", obj.Digest))

	mode := os.FileMode(defaultFileMode)
	var atime, mtime time.Time
	fi, err := e.fs.Stat(obj.AbsPath)
	switch {
	case err == nil:
		mode = fi.Mode().Perm()
		mtime = fi.ModTime()
		atime = accessTime(e.fs, obj.AbsPath, fi)
	case !os.IsNotExist(err):
		return err
	}

	if err = e.copyFromCache(obj, mode, atime, mtime); err != nil {
		return err
	}
	return e.repo.UpdateIndex(ctx, obj.Path)
}

func (e *Engine) copyFromCache(obj model.FatObject, mode os.FileMode, atime, mtime time.Time) error {
	src, err := e.cache.Open(obj.Digest)
	if err != nil {
		return err
	}
	defer src.Close()

	dir := filepath.Dir(obj.AbsPath)
	if err = e.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(e.fs, dir, ".git-fat-restore-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = e.fs.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, src); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = e.fs.Chmod(tmpPath, mode); err != nil {
		return err
	}
	if !mtime.IsZero() {
		if err = e.fs.Chtimes(tmpPath, atime, mtime); err != nil {
			return err
		}
	}
	if err = e.fs.Rename(tmpPath, obj.AbsPath); err != nil {
		return err
	}
	done = true
	return nil
}
