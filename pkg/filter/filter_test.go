package filter

import (
	"bytes"
	"context"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/gitfat/internal/rand"
	"github.com/oneconcern/gitfat/pkg/cache"
	"github.com/oneconcern/gitfat/pkg/stub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupEngine(t testing.TB) (*Engine, *cache.Cache, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	c := cache.New(filepath.Join(".git", "fat", "objects"),
		cache.Fs(afero.NewMemMapFs()),
		cache.Umask(0022),
		cache.Logger(l),
	)
	return New(c, Logger(l)), c, logs
}

func digestOf(data []byte) string {
	sum := sha1.Sum(data) // nolint: gosec
	return hex.EncodeToString(sum[:])
}

func clean(t testing.TB, e *Engine, data []byte) ([]byte, CleanResult) {
	t.Helper()
	var out bytes.Buffer
	res, err := e.Clean(context.Background(), bytes.NewReader(data), &out)
	require.NoError(t, err)
	return out.Bytes(), res
}

func TestClean_KnownInput(t *testing.T) {
	e, c, _ := setupEngine(t)
	data := bytes.Repeat([]byte("0123456789"), 1000)
	require.Len(t, data, 10000)

	s, res := clean(t, e, data)

	digest := digestOf(data)
	expected := "#$# git-fat " + digest + " " + strings.Repeat(" ", 15) + "10000\n"
	assert.Equal(t, expected, string(s))
	assert.Equal(t, digest, res.Digest)
	assert.Equal(t, int64(10000), res.Size)
	assert.False(t, res.PassThrough)
	assert.True(t, res.Inserted)
	assert.True(t, c.Contains(digest))

	// smudge with the cache entry present
	var out bytes.Buffer
	sres, err := e.Smudge(context.Background(), bytes.NewReader(s), &out)
	require.NoError(t, err)
	assert.Equal(t, Restored, sres.Outcome)
	assert.Equal(t, data, out.Bytes())
}

func TestSmudge_CacheMiss(t *testing.T) {
	e, c, logs := setupEngine(t)
	data := bytes.Repeat([]byte("0123456789"), 1000)
	s, res := clean(t, e, data)

	require.NoError(t, c.Fs().Remove(c.Path(res.Digest)))

	var out bytes.Buffer
	sres, err := e.Smudge(context.Background(), bytes.NewReader(s), &out)
	require.NoError(t, err)
	assert.Equal(t, CacheMiss, sres.Outcome)
	assert.Zero(t, out.Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("maybe pull").Len())
}

func TestClean_Idempotent(t *testing.T) {
	e, _, _ := setupEngine(t)
	s, _ := clean(t, e, rand.Bytes(3*BlockSize+17))

	again, res := clean(t, e, s)
	assert.Equal(t, s, again)
	assert.True(t, res.PassThrough)
}

func TestClean_StubPrefixIsContent(t *testing.T) {
	e, c, _ := setupEngine(t)
	s, _ := clean(t, e, []byte("payload"))

	// a stub followed by more bytes is regular content
	data := append(append([]byte{}, s...), []byte("trailing")...)
	out, res := clean(t, e, data)
	assert.False(t, res.PassThrough)
	assert.True(t, stub.IsStub(out))
	assert.True(t, c.Contains(digestOf(data)))
}

func TestRoundTrip(t *testing.T) {
	e, _, _ := setupEngine(t)
	for _, size := range []int{0, 1, stub.MagicLen, BlockSize - 1, BlockSize, BlockSize + 1, 5*BlockSize + 3} {
		data := rand.Bytes(size)
		s, res := clean(t, e, data)
		assert.Equal(t, int64(size), res.Size)

		var out bytes.Buffer
		sres, err := e.Smudge(context.Background(), bytes.NewReader(s), &out)
		require.NoError(t, err)
		assert.Equalf(t, Restored, sres.Outcome, "size %d", size)
		// an empty buffer holds nil bytes
		assert.Truef(t, bytes.Equal(data, out.Bytes()), "size %d: restored content differs", size)
		assert.Equalf(t, size, out.Len(), "size %d", size)
	}
}

func TestClean_SharedContent(t *testing.T) {
	e, c, _ := setupEngine(t)
	data := rand.Bytes(2 * BlockSize)

	first, res1 := clean(t, e, data)
	second, res2 := clean(t, e, data)

	assert.Equal(t, first, second)
	assert.True(t, res1.Inserted)
	assert.False(t, res2.Inserted)

	digests, err := c.List()
	require.NoError(t, err)
	assert.Len(t, digests, 1)

	// no temp file left behind
	entries, err := afero.ReadDir(c.Fs(), c.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClean_Pipe(t *testing.T) {
	e, _, _ := setupEngine(t)
	data := rand.Bytes(10*BlockSize + 11)

	pr, pw := io.Pipe()
	go func() {
		// dribble small writes to produce short reads
		for i := 0; i < len(data); i += 100 {
			end := i + 100
			if end > len(data) {
				end = len(data)
			}
			_, _ = pw.Write(data[i:end])
		}
		_ = pw.Close()
	}()

	var out bytes.Buffer
	res, err := e.Clean(context.Background(), pr, &out)
	require.NoError(t, err)
	assert.Equal(t, digestOf(data), res.Digest)
	assert.Equal(t, int64(len(data)), res.Size)
}

func TestSmudge_NotAStub(t *testing.T) {
	e, _, _ := setupEngine(t)

	for _, input := range []string{"", "hello", strings.Repeat("x", 200)} {
		var out bytes.Buffer
		res, err := e.Smudge(context.Background(), strings.NewReader(input), &out)
		require.NoError(t, err)
		assert.Equal(t, NotAStub, res.Outcome)
		assert.Zero(t, out.Len())
	}
}

func TestSmudge_SizeMismatch(t *testing.T) {
	e, _, logs := setupEngine(t)
	data := []byte("the real content")
	_, res := clean(t, e, data)

	lying := stub.Encode(res.Digest, 3)
	var out bytes.Buffer
	sres, err := e.Smudge(context.Background(), bytes.NewReader(lying), &out)
	require.NoError(t, err)
	assert.Equal(t, SizeMismatch, sres.Outcome)
	assert.Equal(t, data, out.Bytes(), "content is delivered in full")
	assert.Equal(t, int64(3), sres.Expected)
	assert.Equal(t, int64(len(data)), sres.Written)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestClean_Cancelled(t *testing.T) {
	e, c, _ := setupEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Clean(ctx, bytes.NewReader(rand.Bytes(3*BlockSize)), io.Discard)
	require.Error(t, err)

	entries, err := afero.ReadDir(c.Fs(), c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file is removed")
}
