// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
)

// Store implementations know how to read and write entries of a flat K/V model.
//
// Typically this is something file system-like: S3 or a local directory.
// Keys are slash-separated. Writing an existing key overwrites it.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader) error
	Keys(context.Context) ([]string, error)
}

// Downloader is implemented by stores able to fetch an object with concurrent ranged reads
type Downloader interface {
	Download(ctx context.Context, key string, w io.WriterAt) (int64, error)
}

// Download an object into w, using ranged reads when the store supports them
func Download(ctx context.Context, store Store, key string, w io.WriterAt) (int64, error) {
	if d, ok := store.(Downloader); ok {
		return d.Download(ctx, key, w)
	}
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rdr.Close()
	return io.Copy(io.NewOffsetWriter(w, 0), rdr)
}
