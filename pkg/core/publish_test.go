package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oneconcern/gitfat/internal/rand"
	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAdded(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	ctx := context.Background()

	f.addFat(e, "base.bin", rand.Bytes(10))
	f.repo.Commit("v1")

	content := rand.Bytes(2000)
	objs := f.pushed(e, map[string][]byte{"new/data.bin": content})
	f.repo.Commit("feature")
	f.repo.SetHead("v1")

	added := objs["new/data.bin"]
	require.False(t, e.Cache().Contains(added.Digest))
	primaryBefore := f.remoteKeys(f.primary)

	report, err := e.PublishAdded(ctx, "feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"new/data.bin"}, report.Uploaded)

	published, err := afero.ReadFile(f.fs, filepath.Join(publishRoot, "new", "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, published)
	assert.Equal(t, []string{"new/data.bin"}, f.remoteKeys(f.publish))

	// fetched into the cache, the primary store is untouched
	assert.True(t, e.Cache().Contains(added.Digest))
	assert.Equal(t, primaryBefore, f.remoteKeys(f.primary))
	assert.Empty(t, f.repo.Updated())
}

func TestPublishAdded_NothingAdded(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	f.addFat(e, "base.bin", rand.Bytes(10))
	f.repo.Commit("v1")

	report, err := e.PublishAdded(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, report.Uploaded)
	assert.Empty(t, f.remoteKeys(f.publish))
}

func TestPublishAdded_Missing(t *testing.T) {
	f := setupFixture(t)
	e := f.engine()
	f.repo.Commit("v1")

	kept := f.addFat(e, "kept.bin", rand.Bytes(10))
	lost := f.addFat(e, "lost.bin", rand.Bytes(10))
	f.evict(e, lost.Digest)
	f.repo.Commit("feature")
	f.repo.SetHead("v1")

	report, err := e.PublishAdded(context.Background(), "feature")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRemoteMissing))
	assert.Equal(t, []string{kept.Path}, report.Uploaded)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, lost.Path, report.Skipped[0].Object.Path)
}

func TestPublishAdded_DryRun(t *testing.T) {
	f := setupFixture(t)
	e := f.engine(DryRun(true))
	f.repo.Commit("v1")
	f.addFat(e, "a.bin", rand.Bytes(10))
	f.repo.Commit("feature")
	f.repo.SetHead("v1")

	report, err := e.PublishAdded(context.Background(), "feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin"}, report.Uploaded)
	assert.Empty(t, f.remoteKeys(f.publish))
}
