// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [files...]",
	Short: "Download fat files from the remote store and restore them",
	Long: `Downloads the content of fat files missing from the local cache, then replaces their
stubs in the working tree with the actual content.

Without arguments, every fat file of the index is pulled. Given some files, only these are
resolved in the HEAD commit and pulled. Relative paths are taken from the current directory.

Files which are not fat files, or whose content is not found remotely, are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		files, err := absPaths(args)
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}
		env, err := newCliEnv(withRemote)
		if err != nil {
			wrapFatalln("failed to set up git-fat", err)
			return
		}
		report, err := env.engine.Pull(ctx, files...)
		printReport(cmd.OutOrStdout(), "pull", report)
		if err != nil {
			wrapFatalln("pull failed", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
