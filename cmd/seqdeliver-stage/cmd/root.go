package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ekvall/seqdeliver/internal/config"
	"github.com/ekvall/seqdeliver/internal/logger"
	"github.com/ekvall/seqdeliver/internal/service/stage"
	"github.com/ekvall/seqdeliver/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// force re-stages samples already marked STAGED or DELIVERED.
	force bool

	// logLevel sets the minimum level for console logging.
	logLevel string

	// rootCmd represents the base command for staging a delivery tree.
	rootCmd = &cobra.Command{
		Use:   "seqdeliver-stage [project-id] [metadata-file]",
		Short: "Assemble the delivery tree and manifests for a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &stage.Options{
				ConfigPath:   configPath,
				ProjectID:    args[0],
				MetadataPath: args[1],
				Force:        force,
			}

			return stage.Run(ctx, options)
		},
	}
)

// Execute runs the seqdeliver-stage CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&force, "force", false, "re-stage samples already staged or delivered")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
}
