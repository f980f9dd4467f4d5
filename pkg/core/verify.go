package core

import (
	"context"

	"github.com/oneconcern/gitfat/pkg/model"
	"go.uber.org/zap"
)

// Verify checks that every fat object in scope is present on the primary store.
//
// It returns a *MissingError naming all missing objects. This is meant as a gate before
// publishing references to fat objects.
func (e *Engine) Verify(ctx context.Context, scope Scope) error {
	if err := e.requirePrimary(); err != nil {
		return err
	}
	objs, err := e.resolveScope(ctx, scope)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		e.l.Debug("git-fat verify: no fat object in scope", zap.Stringer("scope", scope))
		return nil
	}
	remoteKeys, err := e.primary.List(ctx)
	if err != nil {
		return err
	}

	var missing []model.FatObject
	for _, obj := range objs.Sorted() {
		if _, ok := remoteKeys[obj.Digest]; ok {
			continue
		}
		e.l.Error("git-fat: not found on remote store", zap.String("path", obj.Path), zap.String("object", obj.Digest))
		missing = append(missing, obj)
	}
	if len(missing) > 0 {
		return &MissingError{Objects: missing}
	}
	e.l.Info("git-fat verify: all fat objects found on remote store", zap.Int("objects", len(objs)), zap.Stringer("scope", scope))
	return nil
}
