// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"

	"github.com/oneconcern/gitfat/pkg/core"
)

// printReport summarizes a batch operation on the command output
func printReport(w io.Writer, op string, r core.Report) {
	prefix := op
	if r.DryRun {
		prefix += " (dry run)"
	}
	for _, key := range r.Uploaded {
		_, _ = fmt.Fprintf(w, "%s: uploaded %s\n", prefix, key)
	}
	for _, digest := range r.Downloaded {
		_, _ = fmt.Fprintf(w, "%s: downloaded %s\n", prefix, digest)
	}
	for _, path := range r.Restored {
		_, _ = fmt.Fprintf(w, "%s: restored %s\n", prefix, path)
	}
	for _, skip := range r.Skipped {
		_, _ = fmt.Fprintf(w, "%s: skipped %s: %v\n", prefix, skip.Object.Path, skip.Reason)
	}
}
