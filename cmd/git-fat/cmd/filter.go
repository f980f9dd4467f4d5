// Copyright © 2018 One Concern

package cmd

import (
	"bufio"

	"github.com/oneconcern/gitfat/pkg/filter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// filterCleanCmd is run by git when staging a fat file
var filterCleanCmd = &cobra.Command{
	Use:   "filter-clean [path]",
	Short: "Replace file content read on stdin by a stub written on stdout",
	Long: `Reads the content of a fat file on standard input, stores it in the local cache and
writes its stub on standard output.

This command is run by git: it is registered as the "fat" clean filter by "git-fat init".`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withoutRemote)
		if err != nil {
			wrapFatalln("filter-clean: failed to open repository", err)
			return
		}
		out := bufio.NewWriter(cmd.OutOrStdout())
		res, err := filter.New(env.engine.Cache(), filter.Logger(env.logger)).Clean(ctx, cmd.InOrStdin(), out)
		if err != nil {
			wrapFatalln("filter-clean failed", err)
			return
		}
		if err = out.Flush(); err != nil {
			wrapFatalln("filter-clean: failed to write stub", err)
			return
		}
		env.logger.Debug("filter-clean done",
			zap.Strings("path", args),
			zap.String("object", res.Digest),
			zap.Bool("passthrough", res.PassThrough),
		)
	},
}

// filterSmudgeCmd is run by git when checking out a fat file
var filterSmudgeCmd = &cobra.Command{
	Use:   "filter-smudge [path]",
	Short: "Replace a stub read on stdin by the cached content written on stdout",
	Long: `Reads a stub on standard input and writes the content it refers to on standard output.

Nothing is written when the input is not a stub, or when the content is not cached: in that
case, "git-fat pull" fetches it from the remote store.

This command is run by git: it is registered as the "fat" smudge filter by "git-fat init".`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		env, err := newCliEnv(withoutRemote)
		if err != nil {
			wrapFatalln("filter-smudge: failed to open repository", err)
			return
		}
		out := bufio.NewWriterSize(cmd.OutOrStdout(), filter.BlockSize)
		res, err := filter.New(env.engine.Cache(), filter.Logger(env.logger)).Smudge(ctx, cmd.InOrStdin(), out)
		if err != nil {
			wrapFatalln("filter-smudge failed", err)
			return
		}
		if err = out.Flush(); err != nil {
			wrapFatalln("filter-smudge: failed to write content", err)
			return
		}
		env.logger.Debug("filter-smudge done",
			zap.Strings("path", args),
			zap.Stringer("outcome", res.Outcome),
		)
	},
}

func init() {
	rootCmd.AddCommand(filterCleanCmd)
	rootCmd.AddCommand(filterSmudgeCmd)
}
