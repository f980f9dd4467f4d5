// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List fat files and where their content is available",
	Long: `Lists the fat files of the index, telling whether their content is cached locally,
present on the remote store and restored in the working tree.

The remote store is not queried when none is configured.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withOptionalRemote)
		if err != nil {
			wrapFatalln("failed to set up git-fat", err)
			return
		}
		statuses, err := env.engine.Status(ctx)
		if err != nil {
			wrapFatalln("status failed", err)
			return
		}

		table := uitable.New()
		table.MaxColWidth = 80
		table.AddRow("PATH", "OBJECT", "SIZE", "CACHED", "REMOTE", "RESTORED")
		for _, st := range statuses {
			remote := "?"
			if st.RemoteChecked {
				remote = yesNo(st.Remote)
			}
			table.AddRow(st.Path, st.Digest, units.HumanSize(float64(st.Size)), yesNo(st.Cached), remote, yesNo(st.Restored))
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), table)
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
