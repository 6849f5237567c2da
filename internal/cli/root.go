// Package cli is the balla command line: one-shot appraisals, an
// interactive session, the analysis gateway server and preferences.
package cli

import (
	"time"

	"github.com/raine/balla/config"
	"github.com/raine/balla/internal/imageprep"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	logFile string
	dbPath  string

	fetchTimeout time.Duration
	maxImageMB   int64
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "balla",
		Short: "AI price estimates for used items in Iraq",
		Long: `balla photographs a used item, asks a multimodal model what it is and
what it sells for in the chosen governorate, and shows the price range with
market context.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFile()
			setupLogging(cmd.ErrOrStderr(), flags.verbose, flags.logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogFile()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Also write logs to this file")
	cmd.PersistentFlags().DurationVar(&flags.fetchTimeout, "fetch-timeout", imageprep.DefaultFetchTimeout, "Timeout for loading a photo from a URL")
	cmd.PersistentFlags().Int64Var(&flags.maxImageMB, "max-image-size", imageprep.DefaultMaxImageSize/(1024*1024), "Largest photo accepted, in MB")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database for preferences and the appraisal cache (default $BALLA_DB_PATH or balla.db)")

	cmd.AddCommand(
		newAnalyzeCmd(flags),
		newShellCmd(flags),
		newServeCmd(flags),
		newRegionsCmd(flags),
		newSettingsCmd(flags),
	)

	return cmd
}
