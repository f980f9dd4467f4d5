package storage_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/storage"
	"github.com/oneconcern/gitfat/pkg/storage/localfs"
	"github.com/oneconcern/gitfat/pkg/storage/status"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrument(t *testing.T) {
	fs := afero.NewMemMapFs()
	base, err := localfs.New(fs)
	require.NoError(t, err)

	tracer := mocktracer.New()
	core, logs := observer.New(zapcore.DebugLevel)
	bs := storage.Instrument(tracer, zap.New(core), base)
	ctx := context.Background()

	require.NoError(t, bs.Put(ctx, "key", bytes.NewBufferString("value")))
	has, err := bs.Has(ctx, "key")
	require.NoError(t, err)
	assert.True(t, has)

	// the download target lives out of the store
	target := afero.NewMemMapFs()
	w, err := target.Create("/download")
	require.NoError(t, err)
	n, err := storage.Download(ctx, bs, "key", w)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, w.Close())
	b, err := afero.ReadFile(target, "/download")
	require.NoError(t, err)
	assert.Equal(t, "value", string(b))

	rdr, err := bs.Get(ctx, "key")
	require.NoError(t, err)
	b, err = ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "value", string(b))

	_, err = bs.Get(ctx, "missing")
	assert.True(t, errors.Is(err, status.ErrNotExists))

	keys, err := bs.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "key")

	assert.Equal(t, base.String(), bs.String())

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 6)
	ops := make([]string, 0, len(spans))
	for _, span := range spans {
		ops = append(ops, span.OperationName)
	}
	assert.Equal(t, []string{
		"storage.localfs.Put",
		"storage.localfs.Has",
		"storage.localfs.Download",
		"storage.localfs.Get",
		"storage.localfs.Get",
		"storage.localfs.Keys",
	}, ops)
	assert.Equal(t, "key", spans[0].Tag("key"))
	assert.Equal(t, true, spans[4].Tag("error"))

	assert.Equal(t, 6, logs.FilterField(zap.String("store", "localfs")).Len())
}
