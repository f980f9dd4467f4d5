package core

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/model"
	"go.uber.org/zap"
)

type scopeKind uint8

const (
	allIndexed scopeKind = iota
	explicitPaths
	addedSince
)

// Scope selects the fat objects an operation applies to
type Scope struct {
	kind  scopeKind
	paths []string
	ref   string
}

// AllIndexed selects every fat object of the current index
func AllIndexed() Scope {
	return Scope{kind: allIndexed}
}

// ExplicitPaths selects the indexed fat objects at some paths.
//
// Paths are absolute, or relative to the root of the working tree.
func ExplicitPaths(paths ...string) Scope {
	return Scope{kind: explicitPaths, paths: paths}
}

// AddedSince selects the fat objects added to the current index since ref
func AddedSince(ref string) Scope {
	return Scope{kind: addedSince, ref: ref}
}

func (s Scope) String() string {
	switch s.kind {
	case explicitPaths:
		return "explicit paths"
	case addedSince:
		return "added since " + s.ref
	default:
		return "all indexed"
	}
}

func (e *Engine) resolveScope(ctx context.Context, scope Scope) (model.FatObjects, error) {
	switch scope.kind {
	case addedSince:
		return e.index.ListAdded(ctx, scope.ref, "")

	case explicitPaths:
		if len(scope.paths) == 0 {
			return model.NewFatObjects(), nil
		}
		wanted := make(map[string]string, len(scope.paths))
		for _, p := range scope.paths {
			rel, err := e.relPath(p)
			if err != nil {
				e.l.Warn("ignoring path outside of the repository", zap.String("path", p))
				continue
			}
			wanted[rel] = p
		}
		indexed, err := e.index.ListIndexed(ctx)
		if err != nil {
			return nil, err
		}
		selected := indexed.Filter(func(o model.FatObject) bool {
			_, ok := wanted[o.Path]
			return ok
		})
		for _, o := range selected {
			delete(wanted, o.Path)
		}
		for rel, p := range wanted {
			e.l.Warn("ignoring path which is not an indexed fat file", zap.String("path", p), zap.String("relative path", rel))
		}
		return selected, nil

	default:
		return e.index.ListIndexed(ctx)
	}
}
