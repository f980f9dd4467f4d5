package core

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/model"
)

// ObjectStatus tells where the content of an indexed fat object is available
type ObjectStatus struct {
	model.FatObject

	// Cached is true when the local cache holds the content
	Cached bool

	// Remote is true when the primary store holds the content. It is meaningful only if RemoteChecked is set.
	Remote        bool
	RemoteChecked bool

	// Restored is true when the working tree file holds the content rather than the stub
	Restored bool
}

// Status reports, for every indexed fat object, whether it is cached, present remotely and restored.
//
// The remote store is not queried when none is configured.
func (e *Engine) Status(ctx context.Context) ([]ObjectStatus, error) {
	indexed, err := e.index.ListIndexed(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := e.cache.List()
	if err != nil {
		return nil, err
	}
	var remoteKeys map[string]struct{}
	if e.primary != nil {
		if remoteKeys, err = e.primary.List(ctx); err != nil {
			return nil, err
		}
	}

	res := make([]ObjectStatus, 0, len(indexed))
	for _, obj := range indexed.Sorted() {
		st := ObjectStatus{FatObject: obj, RemoteChecked: remoteKeys != nil}
		_, st.Cached = cached[obj.Digest]
		_, st.Remote = remoteKeys[obj.Digest]
		st.Restored = e.isRegular(obj.AbsPath) && !e.holdsStub(obj)
		res = append(res, st)
	}
	return res, nil
}

func (e *Engine) isRegular(path string) bool {
	fi, err := e.fs.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
