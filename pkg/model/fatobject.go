package model

import (
	"path/filepath"
	"sort"
)

// FatObject is a tracked file whose committed content is a stub
type FatObject struct {
	Digest  string `json:"digest" yaml:"digest"`
	Size    int64  `json:"size" yaml:"size"`
	Path    string `json:"path" yaml:"path"` // slash-separated, relative to the repository root
	AbsPath string `json:"-" yaml:"-"`
}

// NewFatObject builds a fat object for a path relative to some repository root
func NewFatObject(root, path, digest string, size int64) FatObject {
	return FatObject{
		Digest:  digest,
		Size:    size,
		Path:    filepath.ToSlash(path),
		AbsPath: filepath.Join(root, filepath.FromSlash(path)),
	}
}

func (o FatObject) key() string {
	return o.Digest + "\x00" + o.Path
}

// FatObjects is a set of fat objects, identified by (digest, path).
//
// The same content tracked at two paths yields two distinct members.
type FatObjects map[string]FatObject

// NewFatObjects builds a set from some objects
func NewFatObjects(objs ...FatObject) FatObjects {
	s := make(FatObjects, len(objs))
	for _, o := range objs {
		s.Add(o)
	}
	return s
}

// Add an object to the set
func (s FatObjects) Add(o FatObject) {
	s[o.key()] = o
}

// Has tells if the object is a member of the set
func (s FatObjects) Has(o FatObject) bool {
	_, ok := s[o.key()]
	return ok
}

// Digests returns the distinct digests referenced by this set
func (s FatObjects) Digests() map[string]struct{} {
	digests := make(map[string]struct{}, len(s))
	for _, o := range s {
		digests[o.Digest] = struct{}{}
	}
	return digests
}

// Filter returns the subset of objects matching a predicate
func (s FatObjects) Filter(keep func(FatObject) bool) FatObjects {
	res := make(FatObjects)
	for k, o := range s {
		if keep(o) {
			res[k] = o
		}
	}
	return res
}

// Sorted returns the members ordered by path, then digest
func (s FatObjects) Sorted() []FatObject {
	res := make([]FatObject, 0, len(s))
	for _, o := range s {
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Path == res[j].Path {
			return res[i].Digest < res[j].Digest
		}
		return res[i].Path < res[j].Path
	})
	return res
}
