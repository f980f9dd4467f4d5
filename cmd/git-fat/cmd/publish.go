// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <ref>",
	Short: "Upload fat files added in a revision to the publish store",
	Long: `Uploads the content of fat files added in <ref> relative to HEAD to the publish store,
under their path in the repository.

The publish store is configured by the "smudgestore" table of the store section in .gitfat.
Content missing from the local cache is fetched from the remote store first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withRemote)
		if err != nil {
			wrapFatalln("failed to set up git-fat", err)
			return
		}
		report, err := env.engine.PublishAdded(ctx, args[0])
		printReport(cmd.OutOrStdout(), "publish", report)
		if err != nil {
			wrapFatalln("publish failed", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
