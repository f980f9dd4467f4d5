package core

import (
	"context"
	"testing"

	"github.com/oneconcern/gitfat/internal/rand"
	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerify(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	ctx := context.Background()

	require.NoError(t, e.Verify(ctx, AllIndexed()), "nothing indexed")

	f.pushed(e, map[string][]byte{"a.bin": rand.Bytes(100)})
	require.NoError(t, e.Verify(ctx, AllIndexed()))

	missing := f.addFat(e, "data/missing.bin", rand.Bytes(100))
	err := e.Verify(ctx, AllIndexed())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRemoteMissing))
	assert.Contains(t, err.Error(), "data/missing.bin")

	var me *MissingError
	require.True(t, errors.As(err, &me))
	require.Len(t, me.Objects, 1)
	assert.Equal(t, missing.Digest, me.Objects[0].Digest)

	assert.NoError(t, e.Verify(ctx, ExplicitPaths("a.bin")))
	assert.Error(t, e.Verify(ctx, ExplicitPaths(missing.AbsPath)))
	assert.NoError(t, e.Verify(ctx, ExplicitPaths()))
	assert.NoError(t, e.Verify(ctx, ExplicitPaths("not/indexed.bin", "../outside.bin")))

	_, err = e.Push(ctx)
	require.NoError(t, err)
	assert.NoError(t, e.Verify(ctx, AllIndexed()))
}

func TestVerify_AllMissingAreNamed(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	f.addFat(e, "z.bin", rand.Bytes(10))
	f.addFat(e, "a.bin", rand.Bytes(10))

	err := e.Verify(context.Background(), AllIndexed())
	var me *MissingError
	require.True(t, errors.As(err, &me))
	require.Len(t, me.Objects, 2)
	assert.Equal(t, "a.bin", me.Objects[0].Path)
	assert.Equal(t, "z.bin", me.Objects[1].Path)
	assert.Equal(t, 2, f.logs.FilterMessage("git-fat: not found on remote store").Len())
}

func TestVerify_AddedSince(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	ctx := context.Background()

	// an old object, never pushed, is out of scope
	f.addFat(e, "old.bin", rand.Bytes(10))
	f.repo.Commit("v1")

	added := f.addFat(e, "new.bin", rand.Bytes(10))
	err := e.Verify(ctx, AddedSince("v1"))
	var me *MissingError
	require.True(t, errors.As(err, &me))
	require.Len(t, me.Objects, 1)
	assert.Equal(t, added.Path, me.Objects[0].Path)

	require.NoError(t, e.primary.Upload(ctx, e.Cache().Path(added.Digest), added.Digest))
	assert.NoError(t, e.Verify(ctx, AddedSince("v1")))
	assert.Error(t, e.Verify(ctx, AllIndexed()))

	assert.Error(t, e.Verify(ctx, AddedSince("no-such-ref")))
}

func TestVerify_ExplicitPathsNotIndexed(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	ctx := context.Background()
	f.pushed(e, map[string][]byte{"a.bin": rand.Bytes(10)})
	f.writeWorking("plain.txt", []byte("not fat"))
	f.repo.Stage("plain.txt", []byte("not fat"))

	require.NoError(t, e.Verify(ctx, ExplicitPaths("a.bin", "plain.txt", "sub/a.bin", "../outside.bin")))

	skipped := f.logs.FilterMessage("ignoring path which is not an indexed fat file").All()
	require.Len(t, skipped, 2)
	reported := []string{skipped[0].ContextMap()["path"].(string), skipped[1].ContextMap()["path"].(string)}
	assert.ElementsMatch(t, []string{"plain.txt", "sub/a.bin"}, reported)
	for _, entry := range skipped {
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	}
	assert.Equal(t, 1, f.logs.FilterMessage("ignoring path outside of the repository").Len())
}
