// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up git-fat in a repository",
	Long: `Creates the local cache of fat objects and registers the "fat" clean and smudge filters
in the repository configuration.

An existing "fat" filter configuration is left unchanged.

Files are then tracked as fat files with .gitattributes entries like:

  *.iso filter=fat -crlf
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withoutRemote)
		if err != nil {
			wrapFatalln("failed to open repository", err)
			return
		}
		if err = env.engine.Init(ctx); err != nil {
			wrapFatalln("failed to initialize git-fat", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
