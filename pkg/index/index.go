// Package index enumerates the fat objects referenced by a repository.
//
// A blob is a fat object when its size is exactly the length of a stub and its
// content decodes as one. The size test discards most blobs without reading them.
package index

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/model"
	"github.com/oneconcern/gitfat/pkg/stub"
	"github.com/oneconcern/gitfat/pkg/vcs"
	"go.uber.org/zap"
)

// ErrNotAStub indicates a tracked path whose committed content is not a stub
var ErrNotAStub = errors.New("not a fat stub")

// ObjectIndex lists fat objects from the index and history of a repository
type ObjectIndex struct {
	repo vcs.Repository
	l    *zap.Logger
}

// New object index over a repository
func New(repo vcs.Repository, opts ...Option) *ObjectIndex {
	x := &ObjectIndex{
		repo: repo,
		l:    zap.NewNop(),
	}
	for _, apply := range opts {
		apply(x)
	}
	return x
}

// ListIndexed returns the fat objects staged in the current index
func (x *ObjectIndex) ListIndexed(ctx context.Context) (model.FatObjects, error) {
	blobs, err := x.repo.IndexedBlobs(ctx)
	if err != nil {
		return nil, err
	}
	return x.fatObjects(ctx, blobs)
}

// ListAdded returns the fat objects added in ref since base.
// An empty ref compares base to the current index.
func (x *ObjectIndex) ListAdded(ctx context.Context, base, ref string) (model.FatObjects, error) {
	blobs, err := x.repo.AddedBlobs(ctx, base, ref)
	if err != nil {
		return nil, err
	}
	return x.fatObjects(ctx, blobs)
}

// Lookup resolves a single path through the tree of HEAD
func (x *ObjectIndex) Lookup(ctx context.Context, path string) (model.FatObject, error) {
	b, err := x.repo.HeadBlob(ctx, path)
	if err != nil {
		return model.FatObject{}, err
	}
	obj, ok, err := x.decode(ctx, b)
	if err != nil {
		return model.FatObject{}, err
	}
	if !ok {
		return model.FatObject{}, ErrNotAStub.Wrapf("%s", b.Path)
	}
	return obj, nil
}

func (x *ObjectIndex) fatObjects(ctx context.Context, blobs []vcs.Blob) (model.FatObjects, error) {
	objs := make(model.FatObjects)
	for _, b := range blobs {
		obj, ok, err := x.decode(ctx, b)
		if err != nil {
			return nil, err
		}
		if ok {
			objs.Add(obj)
		}
	}
	x.l.Debug("listed fat objects", zap.Int("blobs", len(blobs)), zap.Int("fat objects", len(objs)))
	return objs, nil
}

func (x *ObjectIndex) decode(ctx context.Context, b vcs.Blob) (model.FatObject, bool, error) {
	if b.Size != int64(stub.MagicLen) {
		return model.FatObject{}, false, nil
	}
	head, err := x.repo.ReadBlob(ctx, b.Hash, stub.MagicLen)
	if err != nil {
		return model.FatObject{}, false, err
	}
	if !stub.IsStub(head) {
		return model.FatObject{}, false, nil
	}
	digest, size, err := stub.Decode(head)
	if err != nil {
		x.l.Debug("skipping malformed stub", zap.String("path", b.Path), zap.Error(err))
		return model.FatObject{}, false, nil
	}
	return model.NewFatObject(x.repo.Root(), b.Path, digest, size), true, nil
}
