package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ekvall/seqdeliver/internal/logger"
	"github.com/ekvall/seqdeliver/internal/service/verify"
	"github.com/ekvall/seqdeliver/internal/version"
)

var (
	// workers bounds concurrent digest computation.
	workers int

	// logLevel sets the minimum level for console logging.
	logLevel string

	// rootCmd represents the base command for verifying a delivered tree.
	rootCmd = &cobra.Command{
		Use:   "seqdeliver-verify [md5-file] [target-dir]",
		Short: "Verify a delivered tree against its .md5 manifest",
		Long: "Recompute the digest of every file listed in the manifest and report each " +
			"one as ok, mismatch or missing, like md5sum -c. Exits non-zero unless every file matches.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &verify.Options{
				DigestPath: args[0],
				Workers:    workers,
			}
			if len(args) > 1 {
				options.TargetDir = args[1]
			}

			return verify.Run(ctx, options)
		},
	}
)

// Execute runs the seqdeliver-verify CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent digest workers (0 = one per CPU)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
}
