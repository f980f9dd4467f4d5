// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		repo        string
		config      string
		logLevel    string
		dryRun      bool
		concurrency int
	}
	verify struct {
		all        bool
		addedSince string
	}
	doc struct {
		docTarget string
	}
}

var fatFlags = flagsT{}

const (
	repoFlag        = "repo"
	configFlag      = "config"
	logLevelFlag    = "log-level"
	dryRunFlag      = "dry-run"
	concurrencyFlag = "concurrency"
)

func addRepoFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().StringVar(&fatFlags.root.repo, repoFlag, ".", "Path within the git repository to operate on")
	return repoFlag
}

func addConfigFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().StringVar(&fatFlags.root.config, configFlag, "",
		"Path to the fat store configuration. Defaults to the .gitfat file at the root of the repository")
	return configFlag
}

func addLogLevelFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().StringVar(&fatFlags.root.logLevel, logLevelFlag, "info",
		"The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return logLevelFlag
}

func addDryRunFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().BoolVar(&fatFlags.root.dryRun, dryRunFlag, false, "Log transfers and restores without performing them")
	return dryRunFlag
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().IntVar(&fatFlags.root.concurrency, concurrencyFlag, 1, "Maximum number of concurrent uploads or downloads")
	return concurrencyFlag
}

func addVerifyAllFlag(cmd *cobra.Command) string {
	all := "all"
	cmd.Flags().BoolVar(&fatFlags.verify.all, all, false, "Verify every fat file of the index (the default without paths)")
	return all
}

func addAddedSinceFlag(cmd *cobra.Command) string {
	addedSince := "added-since"
	cmd.Flags().StringVar(&fatFlags.verify.addedSince, addedSince, "", "Verify only fat files added to the index since this revision")
	return addedSince
}

func addTargetFlag(cmd *cobra.Command) string {
	target := "target-dir"
	cmd.Flags().StringVar(&fatFlags.doc.docTarget, target, ".", "The target directory to generate the markdown documentation")
	return target
}
