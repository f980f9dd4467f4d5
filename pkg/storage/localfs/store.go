// Copyright © 2018 One Concern

// Package localfs implements a storage.Store in a local directory.
//
// Puts are atomic: content is written to a staging area inside the store, then
// renamed into place. The staging area is hidden from keys.
package localfs

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oneconcern/gitfat/pkg/storage"
	"github.com/oneconcern/gitfat/pkg/storage/status"
	"github.com/spf13/afero"
)

const (
	stageDir = ".put-stage"
	dirMode  = 0755
	fileMode = 0644
)

// New local file system store. A nil fs stands for the current directory.
func New(fs afero.Fs) (storage.Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	// the staging area exists within the afero.Fs itself
	if err := fs.MkdirAll(stageDir, dirMode); err != nil {
		return nil, status.ErrStorageAPI.Wrapf("ensuring put staging directory %q: %v", stageDir, err)
	}
	return &localFS{fs: fs}, nil
}

type localFS struct {
	fs afero.Fs
}

// keyPath maps a slash-separated key to a file, rejecting keys escaping the store
func keyPath(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", status.ErrInvalidKey.Wrapf("%q", key)
	}
	if clean == stageDir || strings.HasPrefix(clean, stageDir+"/") {
		return "", status.ErrInvalidKey.Wrapf("key %q conflicts with put staging area name %q", key, stageDir)
	}
	return filepath.FromSlash(clean), nil
}

func (l *localFS) Has(_ context.Context, key string) (bool, error) {
	p, err := keyPath(key)
	if err != nil {
		return false, err
	}
	fi, err := l.fs.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := keyPath(key)
	if err != nil {
		return nil, err
	}
	f, err := l.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotExists.Wrapf("%s", key)
		}
		return nil, err
	}
	return f, nil
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader) error {
	p, err := keyPath(key)
	if err != nil {
		return err
	}

	staged, err := afero.TempFile(l.fs, stageDir, "put-")
	if err != nil {
		return err
	}
	stagedPath := staged.Name()
	done := false
	defer func() {
		if !done {
			_ = staged.Close()
			_ = l.fs.Remove(stagedPath)
		}
	}()

	if _, err = io.Copy(staged, source); err != nil {
		return err
	}
	if err = staged.Close(); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = l.fs.Chmod(stagedPath, fileMode); err != nil {
		return err
	}

	// Rename() doesn't create directories automatically
	if dir := filepath.Dir(p); dir != "." {
		if err = l.fs.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}
	if err = l.fs.Rename(stagedPath, p); err != nil {
		return err
	}
	done = true
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	const root = "."
	var res []string
	err := afero.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if info.IsDir() {
			if filepath.Clean(p) == stageDir {
				return filepath.SkipDir
			}
			return nil
		}
		res = append(res, filepath.ToSlash(filepath.Clean(p)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
