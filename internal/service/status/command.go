package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/ekvall/seqdeliver/internal/config"
	"github.com/ekvall/seqdeliver/internal/logger"
	statusrepo "github.com/ekvall/seqdeliver/internal/repository/status"
)

// Options contains inputs for the status entry points.
type Options struct {
	// ConfigPath is the path to the settings YAML file.
	ConfigPath string
	// ProjectID is the project whose statuses are shown or acknowledged.
	ProjectID string
	// SampleID selects a single sample for acknowledgement.
	SampleID string
	// DeliveryID is recorded in the acknowledgement. Optional.
	DeliveryID string
}

// Show prints the per-sample delivery status table for a project.
func Show(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "seqdeliver-status")

	repo, err := openRepository(opts)
	if err != nil {
		return err
	}

	records, err := repo.Load(ctx, opts.ProjectID)
	if errors.Is(err, statusrepo.ErrNotFound) {
		logger.InfoKV(ctx, "No delivery status recorded yet", "project", opts.ProjectID)
		return nil
	} else if err != nil {
		return err
	}

	fmt.Println(renderStatusTable(records)) //nolint:forbidigo // The table is the command's output.

	return nil
}

// Ack marks a sample as delivered and writes its acknowledgement file.
func Ack(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "seqdeliver-status")

	if opts.SampleID == "" {
		return errors.New("sample id is required for acknowledgement")
	}

	repo, err := openRepository(opts)
	if err != nil {
		return err
	}

	if err = repo.MarkDelivered(ctx, opts.ProjectID, opts.SampleID, opts.DeliveryID); err != nil {
		return fmt.Errorf("acknowledge delivery of %s: %w", opts.SampleID, err)
	}

	logger.InfoKV(ctx, "Delivery acknowledged", "project", opts.ProjectID,
		"sample", opts.SampleID, "ack_file", repo.AckPath(opts.SampleID))

	return nil
}

// openRepository loads settings and resolves the status directory for the project.
func openRepository(opts *Options) (*statusrepo.FileRepository, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	statusDir, err := config.ExpandPath(cfg.StatusDir, map[string]string{"projectid": opts.ProjectID})
	if err != nil {
		return nil, err
	}

	return statusrepo.NewFileRepository(statusDir), nil
}

// renderStatusTable renders sample statuses sorted by sample ID.
func renderStatusTable(records map[string]statusrepo.Record) string {
	samples := make([]string, 0, len(records))
	for sampleID := range records {
		samples = append(samples, sampleID)
	}

	sort.Strings(samples)

	tw := table.NewWriter()

	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	}

	tw.AppendHeader(table.Row{"Sample", "Status", "Updated", "Delivery"})

	for _, sampleID := range samples {
		record := records[sampleID]
		tw.AppendRow(table.Row{
			sampleID,
			string(record.Status),
			record.UpdatedAt.Format("2006-01-02 15:04:05"),
			record.DeliveryID,
		})
	}

	return tw.Render()
}
