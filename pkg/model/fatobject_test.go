package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	digestA = "c3499c2729730a7f807efb8676a92dcb6f8a3f8f"
	digestB = "356a192b7913b04c54574d18c28d46e6395428ab"
)

func TestNewFatObject(t *testing.T) {
	root := filepath.FromSlash("/repo")
	o := NewFatObject(root, "data/big.bin", digestA, 42)

	assert.Equal(t, "data/big.bin", o.Path)
	assert.Equal(t, filepath.Join(root, "data", "big.bin"), o.AbsPath)
	assert.Equal(t, int64(42), o.Size)
}

func TestFatObjects_Identity(t *testing.T) {
	s := NewFatObjects(
		NewFatObject("/repo", "a.bin", digestA, 1),
		NewFatObject("/repo", "a.bin", digestA, 1), // same path and digest collapse
		NewFatObject("/repo", "copy/a.bin", digestA, 1),
		NewFatObject("/repo", "b.bin", digestB, 2),
	)

	assert.Len(t, s, 3)
	assert.Len(t, s.Digests(), 2)
	assert.True(t, s.Has(NewFatObject("/repo", "copy/a.bin", digestA, 1)))
	assert.False(t, s.Has(NewFatObject("/repo", "copy/a.bin", digestB, 1)))

	sorted := s.Sorted()
	assert.Equal(t, "a.bin", sorted[0].Path)
	assert.Equal(t, "b.bin", sorted[1].Path)
	assert.Equal(t, "copy/a.bin", sorted[2].Path)

	onlyA := s.Filter(func(o FatObject) bool { return o.Digest == digestA })
	assert.Len(t, onlyA, 2)
}
