// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/oneconcern/gitfat/pkg/core"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [paths...]",
	Short: "Check that fat files are available on the remote store",
	Long: `Checks that the content of fat files is present on the remote store, and exits with a
non-zero status naming every missing file otherwise.

Use it before pushing commits which reference fat files, e.g. in a pre-push hook.

The files checked are either:
  - the given paths, relative to the current directory
  - the fat files added to the index since a revision, with --added-since
  - every fat file of the index (the default)
`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		scope, err := verifyScope(args)
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}
		env, err := newCliEnv(withRemote)
		if err != nil {
			wrapFatalln("failed to set up git-fat", err)
			return
		}

		err = env.engine.Verify(ctx, scope)
		var missing *core.MissingError
		switch {
		case err == nil:
		case errors.As(err, &missing):
			for _, obj := range missing.Objects {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "git-fat: not found on remote store: %s (%s)\n", obj.Path, obj.Digest)
			}
			exitWithCodef(cmd.ErrOrStderr(), 1, "verify failed: %d fat file(s) missing from the remote store", len(missing.Objects))
		default:
			wrapFatalln("verify failed", err)
		}
	},
}

var errConflictingScope = errors.New("paths, --all and --added-since are mutually exclusive")

func verifyScope(args []string) (core.Scope, error) {
	set := 0
	if len(args) > 0 {
		set++
	}
	if fatFlags.verify.all {
		set++
	}
	if fatFlags.verify.addedSince != "" {
		set++
	}
	switch {
	case set > 1:
		return core.Scope{}, errConflictingScope
	case len(args) > 0:
		paths, err := absPaths(args)
		if err != nil {
			return core.Scope{}, err
		}
		return core.ExplicitPaths(paths...), nil
	case fatFlags.verify.addedSince != "":
		return core.AddedSince(fatFlags.verify.addedSince), nil
	default:
		return core.AllIndexed(), nil
	}
}

func init() {
	addVerifyAllFlag(verifyCmd)
	addAddedSinceFlag(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
