// Package cache implements the local content-addressable store of fat objects.
//
// Each object is a read-only file named after the hex SHA-1 digest of its content,
// located in a private directory of the repository (usually .git/fat/objects).
//
// Entries are created once and never mutated: new content is written to a temporary
// file inside the cache directory, then atomically renamed into place. The first
// writer wins, a concurrent writer of the same digest has produced identical bytes.
package cache

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DirMode is the permission of the cache directory
	DirMode os.FileMode = 0755

	// EntryMode is the permission of a cache entry, before the umask applies
	EntryMode os.FileMode = 0444

	tempPrefix = ".tmp-"
	digestLen  = 40
)

var (
	// ErrNotFound indicates that the cache holds no entry for a digest
	ErrNotFound = errors.New("fat object not found in cache")

	// ErrInvalidDigest indicates a key which is not a hex SHA-1 digest
	ErrInvalidDigest = errors.New("invalid digest")
)

// Cache is a content-addressable store on a local file system
type Cache struct {
	fs        afero.Fs
	dir       string
	l         *zap.Logger
	umask     os.FileMode
	umaskOnce sync.Once
	umaskSet  bool
}

// New cache located in dir. The directory is created on first use.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		fs:  afero.NewOsFs(),
		dir: dir,
		l:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Dir is the location of the cache
func (c *Cache) Dir() string {
	return c.dir
}

// Fs is the file system holding the cache
func (c *Cache) Fs() afero.Fs {
	return c.fs
}

// Ensure the cache directory exists
func (c *Cache) Ensure() error {
	return c.fs.MkdirAll(c.dir, DirMode)
}

// Path of the entry for some digest
func (c *Cache) Path(digest string) string {
	return filepath.Join(c.dir, digest)
}

// TempFile creates a new temporary file inside the cache directory,
// so that a later Insert is an atomic rename.
func (c *Cache) TempFile() (afero.File, error) {
	if err := c.Ensure(); err != nil {
		return nil, err
	}
	return afero.TempFile(c.fs, c.dir, tempPrefix)
}

// Insert publishes a temporary file as the entry for digest.
//
// If the entry exists already, the temporary file is removed and Insert returns false.
func (c *Cache) Insert(tempPath, digest string) (bool, error) {
	if err := ValidateDigest(digest); err != nil {
		_ = c.fs.Remove(tempPath)
		return false, err
	}

	target := c.Path(digest)
	if c.Contains(digest) {
		c.l.Debug("cache already exists", zap.String("object", target))
		if err := c.fs.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			return false, err
		}
		return false, nil
	}

	if err := c.fs.Chmod(tempPath, EntryMode&^c.getUmask()); err != nil {
		return false, err
	}
	if err := c.fs.Rename(tempPath, target); err != nil {
		return false, err
	}
	c.l.Debug("caching object", zap.String("object", target))
	return true, nil
}

// Contains tells if the cache holds an entry for digest
func (c *Cache) Contains(digest string) bool {
	if ValidateDigest(digest) != nil {
		return false
	}
	fi, err := c.fs.Stat(c.Path(digest))
	return err == nil && fi.Mode().IsRegular()
}

// List all digests held by the cache
func (c *Cache) List() (map[string]struct{}, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	digests := make(map[string]struct{}, len(entries))
	for _, fi := range entries {
		name := fi.Name()
		if !fi.Mode().IsRegular() || strings.HasPrefix(name, tempPrefix) || ValidateDigest(name) != nil {
			continue
		}
		digests[name] = struct{}{}
	}
	return digests, nil
}

// Open the entry for digest
func (c *Cache) Open(digest string) (afero.File, error) {
	if err := ValidateDigest(digest); err != nil {
		return nil, err
	}
	f, err := c.fs.Open(c.Path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound.Wrapf("%s", digest)
		}
		return nil, err
	}
	return f, nil
}

func (c *Cache) getUmask() os.FileMode {
	c.umaskOnce.Do(func() {
		if !c.umaskSet {
			c.umask = currentUmask()
		}
	})
	return c.umask
}

// ValidateDigest checks that a key is a 40 characters hex digest
func ValidateDigest(digest string) error {
	if len(digest) != digestLen {
		return ErrInvalidDigest.Wrapf("%q", digest)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return ErrInvalidDigest.Wrapf("%q", digest)
	}
	return nil
}

// DefaultDir is the location of the cache inside the private directory of a git repository
func DefaultDir(gitDir string) string {
	return filepath.Join(gitDir, "fat", "objects")
}
