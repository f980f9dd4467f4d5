// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload cached fat files to the remote store",
	Long: `Uploads the content of fat files referenced by the index which are cached locally,
but missing from the remote store. Each distinct content is uploaded once.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withRemote)
		if err != nil {
			wrapFatalln("failed to set up git-fat", err)
			return
		}
		report, err := env.engine.Push(ctx)
		printReport(cmd.OutOrStdout(), "push", report)
		if err != nil {
			wrapFatalln("push failed", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
