// Package model describes the base objects manipulated by git-fat.
//
// The object model is composed of:
//
//  Fat objects:
//    A tracked file whose content in the index or in a commit is a stub. A fat object is
//    identified by the digest of its actual content and its path in the working tree.
//    The same content tracked at two paths makes two fat objects.
//
//  Fat object sets:
//    Fat objects collected from the index or from the difference of two revisions.
//    They are recomputed for every operation and never persisted.
package model
