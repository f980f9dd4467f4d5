// Package remote transfers fat objects between local files and a storage backend.
package remote

import (
	"context"
	"path/filepath"

	"github.com/oneconcern/gitfat/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Store is a remote fat store, holding whole files under flat keys
type Store struct {
	store storage.Store
	fs    afero.Fs
	l     *zap.Logger
}

// New remote store over a storage backend
func New(store storage.Store, opts ...Option) *Store {
	s := &Store{
		store: store,
		fs:    afero.NewOsFs(),
		l:     zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func (s *Store) String() string {
	return s.store.String()
}

// List all keys held remotely
func (s *Store) List(ctx context.Context) (map[string]struct{}, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	res := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		res[k] = struct{}{}
	}
	return res, nil
}

// Has tells if key exists remotely
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	return s.store.Has(ctx, key)
}

// Upload a local file under key. An empty key stands for the base name of the file.
func (s *Store) Upload(ctx context.Context, localPath, key string) error {
	if key == "" {
		key = filepath.Base(localPath)
	}
	f, err := s.fs.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	s.l.Debug("uploading", zap.String("file", localPath), zap.String("key", key), zap.Stringer("store", s))
	return s.store.Put(ctx, key, f)
}

// Download key into a local file.
//
// Content lands in a temporary file next to localPath, renamed into place once complete.
func (s *Store) Download(ctx context.Context, key, localPath string) error {
	dir := filepath.Dir(localPath)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(s.fs, dir, ".download-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpPath)
		}
	}()

	s.l.Debug("downloading", zap.String("key", key), zap.String("file", localPath), zap.Stringer("store", s))
	if _, err = storage.Download(ctx, s.store, key, tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = s.fs.Rename(tmpPath, localPath); err != nil {
		return err
	}
	done = true
	return nil
}
