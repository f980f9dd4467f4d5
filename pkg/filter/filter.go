// Package filter implements the git clean and smudge filters of fat files.
//
// Clean turns working tree content into a stub and stores the content in the cache.
// Smudge turns a stub back into the cached content.
//
// Both filters stream their input by fixed-size blocks: they run in bounded memory and
// never seek, so that git may feed them through pipes.
package filter

import (
	"context"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"io"

	"github.com/docker/go-units"
	"github.com/oneconcern/gitfat/pkg/cache"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/stub"
	"go.uber.org/zap"
)

// BlockSize is the default size of buffers used to stream content
const BlockSize = 4 * units.KiB

// Outcome of a smudge operation. None of them is an error.
type Outcome int

const (
	// Restored means the cached content has been written out
	Restored Outcome = iota

	// NotAStub means the input is not a stub: nothing is written
	NotAStub

	// CacheMiss means the stub refers to an object absent from the cache: nothing is written
	CacheMiss

	// SizeMismatch means the cached content has been written out, but its size differs from the stub
	SizeMismatch
)

func (o Outcome) String() string {
	switch o {
	case Restored:
		return "restored"
	case NotAStub:
		return "not a stub"
	case CacheMiss:
		return "cache miss"
	case SizeMismatch:
		return "size mismatch"
	default:
		return "unknown"
	}
}

// CleanResult describes the stub produced by Clean
type CleanResult struct {
	Digest      string
	Size        int64
	PassThrough bool // input was a stub already
	Inserted    bool // a new cache entry was created
}

// SmudgeResult describes what Smudge wrote out
type SmudgeResult struct {
	Outcome  Outcome
	Digest   string
	Expected int64
	Written  int64
}

// Engine runs clean and smudge filters against a cache
type Engine struct {
	cache     *cache.Cache
	l         *zap.Logger
	blockSize int
}

// New filter engine
func New(c *cache.Cache, opts ...Option) *Engine {
	e := &Engine{
		cache:     c,
		l:         zap.NewNop(),
		blockSize: BlockSize,
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// Clean reads file content from in and writes the corresponding stub to out.
//
// When the first block of input is a stub already, it is copied unchanged.
func (e *Engine) Clean(ctx context.Context, in io.Reader, out io.Writer) (CleanResult, error) {
	var res CleanResult

	first, err := readBlock(in, e.blockSize)
	if err != nil {
		return res, err
	}

	if stub.IsStub(first) {
		res.PassThrough = true
		res.Digest, res.Size, _ = stub.Decode(first)
		_, err = out.Write(first)
		return res, err
	}

	tmp, err := e.cache.TempFile()
	if err != nil {
		return res, err
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		if !published {
			_ = tmp.Close()
			_ = e.cache.Fs().Remove(tmpPath)
		}
	}()

	hasher := sha1.New() // nolint: gosec
	w := io.MultiWriter(tmp, hasher)
	if _, err = w.Write(first); err != nil {
		return res, err
	}
	size := int64(len(first))

	buf := make([]byte, e.blockSize)
	for {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, err = w.Write(buf[:n]); err != nil {
				return res, err
			}
			size += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return res, rerr
		}
	}

	if err = tmp.Close(); err != nil {
		return res, err
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	inserted, err := e.cache.Insert(tmpPath, digest)
	if err != nil {
		return res, err
	}
	published = true
	if inserted {
		e.l.Info("filter-clean: caching object", zap.String("object", digest), zap.Int64("size", size))
	}

	res = CleanResult{Digest: digest, Size: size, Inserted: inserted}
	_, err = out.Write(stub.Encode(digest, size))
	return res, err
}

// Smudge reads a stub from in and writes the cached content it refers to.
//
// A missing stub, a missing cache entry or a size mismatch are reported in the
// result outcome, not as errors.
func (e *Engine) Smudge(ctx context.Context, in io.Reader, out io.Writer) (SmudgeResult, error) {
	res := SmudgeResult{Outcome: NotAStub}

	header, err := readBlock(in, stub.MagicLen)
	if err != nil {
		return res, err
	}
	if !stub.IsStub(header) {
		e.l.Debug("filter-smudge: fat stub not found in input stream")
		return res, nil
	}
	digest, size, err := stub.Decode(header)
	if err != nil {
		e.l.Debug("filter-smudge: invalid fat stub in input stream", zap.Error(err))
		return res, nil
	}
	res.Digest, res.Expected = digest, size

	f, err := e.cache.Open(digest)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) || errors.Is(err, cache.ErrInvalidDigest) {
			e.l.Info("filter-smudge: fat object missing, maybe pull?", zap.String("object", digest))
			res.Outcome = CacheMiss
			return res, nil
		}
		return res, err
	}
	defer f.Close()

	buf := make([]byte, e.blockSize)
	for {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			written, werr := out.Write(buf[:n])
			res.Written += int64(written)
			if werr != nil {
				return res, werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return res, rerr
		}
	}

	if res.Written != size {
		e.l.Warn("filter-smudge: invalid file size",
			zap.String("object", digest),
			zap.Int64("expected", size),
			zap.Int64("got", res.Written),
		)
		res.Outcome = SizeMismatch
		return res, nil
	}

	res.Outcome = Restored
	return res, nil
}

// readBlock fills a buffer of size n, unless the input ends first
func readBlock(in io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(in, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}
