// Package gogit implements the vcs collaborator on top of go-git.
package gogit

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/vcs"
	"go.uber.org/zap"
)

const filterSection = "filter"

// ErrOpen indicates that no usable git working tree was found
var ErrOpen = errors.New("cannot open git repository")

var _ vcs.Repository = &Repository{}

// Repository is a git repository with a working tree
type Repository struct {
	repo   *git.Repository
	root   string
	gitDir string
	l      *zap.Logger

	// serializes read-modify-write cycles on the index file
	mu sync.Mutex
}

// Open the repository enclosing path
func Open(path string, opts ...Option) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ErrOpen.Wrap(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ErrOpen.Wrap(err)
	}

	r := &Repository{
		repo: repo,
		root: wt.Filesystem.Root(),
		l:    zap.NewNop(),
	}
	r.gitDir = filepath.Join(r.root, git.GitDirName)
	if s, ok := repo.Storer.(*filesystem.Storage); ok {
		r.gitDir = s.Filesystem().Root()
	}
	for _, apply := range opts {
		apply(r)
	}
	r.l.Debug("opened git repository", zap.String("root", r.root), zap.String("git dir", r.gitDir))
	return r, nil
}

// Root of the working tree
func (r *Repository) Root() string { return r.root }

// GitDir holding the object database
func (r *Repository) GitDir() string { return r.gitDir }

// IndexedBlobs lists the stage 0 file entries of the index
func (r *Repository) IndexedBlobs(ctx context.Context) ([]vcs.Blob, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, err
	}

	blobs := make([]vcs.Blob, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		// non-zero stages are unmerged entries
		if e.Stage != 0 || !e.Mode.IsFile() {
			continue
		}
		b, err := r.blob(e.Name, e.Hash)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

// AddedBlobs lists files added in ref since base.
//
// When ref is empty, the current index stands in for the target tree.
func (r *Repository) AddedBlobs(ctx context.Context, base, ref string) ([]vcs.Blob, error) {
	baseTree, err := r.tree(base)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return r.addedToIndex(ctx, baseTree)
	}

	refTree, err := r.tree(ref)
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeContext(ctx, baseTree, refTree)
	if err != nil {
		return nil, err
	}

	var blobs []vcs.Blob
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, err
		}
		if action != merkletrie.Insert || !change.To.TreeEntry.Mode.IsFile() {
			continue
		}
		b, err := r.blob(change.To.Name, change.To.TreeEntry.Hash)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

func (r *Repository) addedToIndex(ctx context.Context, baseTree *object.Tree) ([]vcs.Blob, error) {
	indexed, err := r.IndexedBlobs(ctx)
	if err != nil {
		return nil, err
	}

	var blobs []vcs.Blob
	for _, b := range indexed {
		_, err := baseTree.FindEntry(b.Path)
		switch {
		case err == nil:
			continue
		case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
			blobs = append(blobs, b)
		default:
			return nil, err
		}
	}
	return blobs, nil
}

// HeadBlob resolves a path in the tree of HEAD
func (r *Repository) HeadBlob(_ context.Context, path string) (vcs.Blob, error) {
	tree, err := r.tree(plumbing.HEAD.String())
	if err != nil {
		return vcs.Blob{}, err
	}
	path = filepath.ToSlash(path)
	e, err := tree.FindEntry(path)
	switch {
	case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
		return vcs.Blob{}, vcs.ErrNotTracked.Wrapf("%s", path)
	case err != nil:
		return vcs.Blob{}, err
	case !e.Mode.IsFile():
		return vcs.Blob{}, vcs.ErrNotTracked.Wrapf("%s: not a file", path)
	}
	return r.blob(path, e.Hash)
}

// ReadBlob returns at most n leading bytes of a blob
func (r *Repository) ReadBlob(_ context.Context, hash string, n int) ([]byte, error) {
	blob, err := r.repo.BlobObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, err
	}
	rdr, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(rdr, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}

// UpdateIndex refreshes the stat information recorded for path.
//
// The staged blob is left untouched: a restored fat file still cleans to the
// same stub, so only the size and timestamps need to follow the working tree.
func (r *Repository) UpdateIndex(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path = filepath.ToSlash(path)
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return err
	}
	e, err := idx.Entry(path)
	if err != nil {
		if errors.Is(err, index.ErrEntryNotFound) {
			return vcs.ErrNotTracked.Wrapf("%s", path)
		}
		return err
	}

	fi, err := os.Lstat(filepath.Join(r.root, filepath.FromSlash(path)))
	if err != nil {
		return err
	}
	e.ModifiedAt = fi.ModTime()
	e.Size = uint32(fi.Size()) // nolint: gosec
	r.l.Debug("updating index entry", zap.String("path", path), zap.Int64("size", fi.Size()))
	return r.repo.Storer.SetIndex(idx)
}

// FilterRegistered tells if both clean and smudge commands are set for a filter
func (r *Repository) FilterRegistered(name string) (bool, error) {
	cfg, err := r.repo.Storer.Config()
	if err != nil {
		return false, err
	}
	if !cfg.Raw.HasSection(filterSection) || !cfg.Raw.Section(filterSection).HasSubsection(name) {
		return false, nil
	}
	sub := cfg.Raw.Section(filterSection).Subsection(name)
	return sub.Option("clean") != "" && sub.Option("smudge") != "", nil
}

// RegisterFilter sets the clean and smudge commands of a filter in the repository configuration
func (r *Repository) RegisterFilter(name, clean, smudge string) error {
	cfg, err := r.repo.Storer.Config()
	if err != nil {
		return err
	}
	cfg.Raw.Section(filterSection).Subsection(name).
		SetOption("clean", clean).
		SetOption("smudge", smudge)
	return r.repo.Storer.SetConfig(cfg)
}

func (r *Repository) tree(rev string) (*object.Tree, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, vcs.ErrBadRevision.Wrap(err)
	}
	commit, err := r.repo.CommitObject(*h)
	if err != nil {
		return nil, vcs.ErrBadRevision.Wrap(err)
	}
	return commit.Tree()
}

// blob sizes an object from its header, leaving the content compressed
func (r *Repository) blob(path string, h plumbing.Hash) (vcs.Blob, error) {
	size, err := r.repo.Storer.EncodedObjectSize(h)
	if err != nil {
		return vcs.Blob{}, err
	}
	return vcs.Blob{Path: path, Hash: h.String(), Size: size}, nil
}
