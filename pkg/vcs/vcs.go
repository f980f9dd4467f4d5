// Package vcs describes what git-fat needs from the version control system
// hosting the fat files.
package vcs

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/errors"
)

var (
	// ErrNotTracked indicates a path absent from the tree or index being inspected
	ErrNotTracked = errors.New("path is not tracked")

	// ErrBadRevision indicates a revision that cannot be resolved to a commit
	ErrBadRevision = errors.New("cannot resolve revision")
)

// Blob is a file content known to the repository, either staged or committed
type Blob struct {
	Path string // slash-separated, relative to the repository root
	Hash string // object id of the blob
	Size int64
}

// Repository is the collaborator used to enumerate stubs and refresh the index
// after a working tree file has been restored.
type Repository interface {
	// Root of the working tree
	Root() string

	// GitDir is the private directory of the repository, usually <root>/.git
	GitDir() string

	// IndexedBlobs lists fully merged entries of the current index
	IndexedBlobs(context.Context) ([]Blob, error)

	// AddedBlobs lists blobs added in ref since base. An empty ref stands for the current index.
	AddedBlobs(ctx context.Context, base, ref string) ([]Blob, error)

	// HeadBlob resolves a path through the tree of HEAD
	HeadBlob(ctx context.Context, path string) (Blob, error)

	// ReadBlob returns at most n leading bytes of a blob
	ReadBlob(ctx context.Context, hash string, n int) ([]byte, error)

	// UpdateIndex refreshes the stat information of an index entry after its
	// working tree file has changed, without altering the staged content.
	UpdateIndex(ctx context.Context, path string) error

	// FilterRegistered tells if a filter driver is configured
	FilterRegistered(name string) (bool, error)

	// RegisterFilter configures the clean and smudge commands of a filter driver
	RegisterFilter(name, clean, smudge string) error
}
