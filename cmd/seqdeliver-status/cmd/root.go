package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ekvall/seqdeliver/internal/config"
	"github.com/ekvall/seqdeliver/internal/service/status"
	"github.com/ekvall/seqdeliver/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// deliveryID recorded with an acknowledgement.
	deliveryID string

	// rootCmd represents the base command for showing delivery statuses.
	rootCmd = &cobra.Command{
		Use:   "seqdeliver-status [project-id]",
		Short: "Show per-sample delivery status for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return status.Show(ctx, &status.Options{
				ConfigPath: configPath,
				ProjectID:  args[0],
			})
		},
	}

	// ackCmd acknowledges the handoff of one sample.
	ackCmd = &cobra.Command{
		Use:   "ack [project-id] [sample-id]",
		Short: "Mark a sample as delivered and write its acknowledgement file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return status.Ack(ctx, &status.Options{
				ConfigPath: configPath,
				ProjectID:  args[0],
				SampleID:   args[1],
				DeliveryID: deliveryID,
			})
		},
	}
)

// Execute runs the seqdeliver-status CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(ackCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	ackCmd.Flags().StringVar(&deliveryID, "delivery-id", "", "delivery run id to record in the acknowledgement")
}
