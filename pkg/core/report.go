package core

import (
	"sort"
	"strings"
	"sync"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/model"
)

// Skip records a fat object left out of an operation, without failing it
type Skip struct {
	Object model.FatObject
	Reason error
}

// Report summarizes the outcome of a batch operation
type Report struct {
	Uploaded   []string // remote keys
	Downloaded []string // digests
	Restored   []string // paths
	Skipped    []Skip
	DryRun     bool
}

// reporter accumulates a report from concurrent transfers
type reporter struct {
	mu sync.Mutex
	r  Report
}

func (rp *reporter) uploaded(key string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Uploaded = append(rp.r.Uploaded, key)
}

func (rp *reporter) downloaded(digest string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Downloaded = append(rp.r.Downloaded, digest)
}

func (rp *reporter) restored(path string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Restored = append(rp.r.Restored, path)
}

func (rp *reporter) skipped(obj model.FatObject, reason error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Skipped = append(rp.r.Skipped, Skip{Object: obj, Reason: reason})
}

func (rp *reporter) report(dryRun bool) Report {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	r := rp.r
	sort.Strings(r.Uploaded)
	sort.Strings(r.Downloaded)
	sort.Strings(r.Restored)
	sort.Slice(r.Skipped, func(i, j int) bool { return r.Skipped[i].Object.Path < r.Skipped[j].Object.Path })
	r.DryRun = dryRun
	return r
}

// MissingError lists fat objects absent from the remote store
type MissingError struct {
	Objects []model.FatObject
}

func (e *MissingError) Error() string {
	paths := make([]string, 0, len(e.Objects))
	for _, o := range e.Objects {
		paths = append(paths, o.Path)
	}
	return status.ErrRemoteMissing.Error() + ": " + strings.Join(paths, ", ")
}

// Unwrap to the ErrRemoteMissing sentinel
func (e *MissingError) Unwrap() error {
	return status.ErrRemoteMissing
}
