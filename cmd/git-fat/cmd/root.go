// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix of environment variables overriding the global flags, e.g. GIT_FAT_LOG_LEVEL
const envPrefix = "GIT_FAT"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "git-fat",
	Short: "git-fat keeps large files out of git history",
	Long: `git-fat keeps large files out of git history.

Files matched by the "fat" filter in .gitattributes are committed as small stubs, while their
content lives in a local cache (.git/fat/objects) and on a remote object store.

The remote store is configured in a .gitfat file at the root of the repository:

  [s3]
  bucket = 's3://my-bucket'
  prefix = 'fat/'

Git runs "git-fat filter-clean" and "git-fat filter-smudge" on checkout and staging.
Run "git-fat push" and "git-fat pull" to synchronize fat files with the remote store.
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addRepoFlag(rootCmd)
	addConfigFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addDryRunFlag(rootCmd)
	addConcurrencyFlag(rootCmd)
}

// initConfig lets environment variables override global flags
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		wrapFatalln("failed to bind flags", err)
	}
}
