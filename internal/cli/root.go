package cli

import (
	"fmt"
	"os"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/branding"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/config"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	logLevel string
	log      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps KiCad projects wired to the shared EL-KiCad-Library: it
regenerates per-project library tables, imports vendor component archives and
relocates 3D models.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()

		level := config.Get(config.KeyLogLevel)
		if logLevel != "" {
			level = logLevel
		}
		l, err := logger.New(&logger.Config{Level: level, Format: config.Get(config.KeyLogFormat)})
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed to stderr before being returned.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
