// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/gitfat/pkg/errors"
)

var (
	// ErrNotTracked indicates a path which is not tracked by the repository
	ErrNotTracked = errors.New("not found in repo")

	// ErrNotAStub indicates a tracked path whose committed content is not a fat stub
	ErrNotAStub = errors.New("not a fat object")

	// ErrRemoteMissing indicates a fat object absent from the remote store
	ErrRemoteMissing = errors.New("not found on remote store")

	// ErrCacheMiss indicates a fat object absent from the local cache
	ErrCacheMiss = errors.New("fat object missing from cache")

	// ErrDigestMismatch indicates downloaded content which does not hash to its key
	ErrDigestMismatch = errors.New("downloaded content does not match its digest")

	// ErrNoRemote indicates an operation requiring a remote store, while none is configured
	ErrNoRemote = errors.New("no remote fat store configured")

	// ErrNoPublishStore indicates a publish operation while no smudgestore is configured
	ErrNoPublishStore = errors.New("no smudgestore configured")
)
