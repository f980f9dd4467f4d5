// Package vcstest provides an in-memory vcs.Repository for tests.
package vcstest

import (
	"context"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"path/filepath"
	"sort"
	"sync"

	"github.com/oneconcern/gitfat/pkg/vcs"
)

var _ vcs.Repository = &Repo{}

// Repo keeps an index and named commits in memory.
//
// Working tree files are not simulated: callers write them where Root points to.
type Repo struct {
	mu      sync.Mutex
	root    string
	index   map[string]string
	commits map[string]map[string]string
	blobs   map[string][]byte
	head    string
	filters map[string][2]string
	updated []string
}

// New in-memory repository rooted at root
func New(root string) *Repo {
	return &Repo{
		root:    root,
		index:   make(map[string]string),
		commits: make(map[string]map[string]string),
		blobs:   make(map[string][]byte),
		filters: make(map[string][2]string),
	}
}

// Stage content at path in the index
func (r *Repo) Stage(path string, content []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := sha1.Sum(content) // nolint: gosec
	h := hex.EncodeToString(sum[:])
	r.blobs[h] = append([]byte{}, content...)
	r.index[filepath.ToSlash(path)] = h
}

// Unstage removes path from the index
func (r *Repo) Unstage(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.index, filepath.ToSlash(path))
}

// Commit snapshots the index under rev and moves HEAD to it
func (r *Repo) Commit(rev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tree := make(map[string]string, len(r.index))
	for p, h := range r.index {
		tree[p] = h
	}
	r.commits[rev] = tree
	r.head = rev
}

// SetHead moves HEAD to a commit created earlier
func (r *Repo) SetHead(rev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = rev
}

// Updated lists the paths passed to UpdateIndex, in call order
func (r *Repo) Updated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.updated...)
}

// Root of the working tree
func (r *Repo) Root() string { return r.root }

// GitDir of the repository
func (r *Repo) GitDir() string { return filepath.Join(r.root, ".git") }

// IndexedBlobs lists staged blobs, ordered by path
func (r *Repo) IndexedBlobs(ctx context.Context) ([]vcs.Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(r.index, nil), ctx.Err()
}

// AddedBlobs lists blobs of ref (or the index) absent from base
func (r *Repo) AddedBlobs(ctx context.Context, base, ref string) ([]vcs.Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, err := r.resolve(base)
	if err != nil {
		return nil, err
	}
	to := r.index
	if ref != "" {
		if to, err = r.resolve(ref); err != nil {
			return nil, err
		}
	}
	return r.list(to, from), ctx.Err()
}

// HeadBlob resolves path in the HEAD commit
func (r *Repo) HeadBlob(_ context.Context, path string) (vcs.Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tree, err := r.resolve("HEAD")
	if err != nil {
		return vcs.Blob{}, err
	}
	path = filepath.ToSlash(path)
	h, ok := tree[path]
	if !ok {
		return vcs.Blob{}, vcs.ErrNotTracked.Wrapf("%s", path)
	}
	return vcs.Blob{Path: path, Hash: h, Size: int64(len(r.blobs[h]))}, nil
}

// ReadBlob returns at most n leading bytes of a blob
func (r *Repo) ReadBlob(_ context.Context, hash string, n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blobs[hash]
	if !ok {
		return nil, vcs.ErrNotTracked.Wrapf("no blob %s", hash)
	}
	if len(b) > n {
		b = b[:n]
	}
	return append([]byte{}, b...), nil
}

// UpdateIndex records the refreshed path
func (r *Repo) UpdateIndex(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	path = filepath.ToSlash(path)
	if _, ok := r.index[path]; !ok {
		return vcs.ErrNotTracked.Wrapf("%s", path)
	}
	r.updated = append(r.updated, path)
	return nil
}

// FilterRegistered tells if a filter has been registered
func (r *Repo) FilterRegistered(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.filters[name]
	return ok, nil
}

// RegisterFilter records a filter
func (r *Repo) RegisterFilter(name, clean, smudge string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = [2]string{clean, smudge}
	return nil
}

// Filter returns the clean and smudge commands of a registered filter
func (r *Repo) Filter(name string) (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.filters[name]
	return f[0], f[1]
}

func (r *Repo) resolve(rev string) (map[string]string, error) {
	if rev == "HEAD" {
		rev = r.head
	}
	tree, ok := r.commits[rev]
	if !ok {
		return nil, vcs.ErrBadRevision.Wrapf("%q", rev)
	}
	return tree, nil
}

func (r *Repo) list(tree, exclude map[string]string) []vcs.Blob {
	blobs := make([]vcs.Blob, 0, len(tree))
	for p, h := range tree {
		if _, skip := exclude[p]; skip {
			continue
		}
		blobs = append(blobs, vcs.Blob{Path: p, Hash: h, Size: int64(len(r.blobs[h]))})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Path < blobs[j].Path })
	return blobs
}
