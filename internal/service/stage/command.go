package stage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ekvall/seqdeliver/internal/checksum"
	"github.com/ekvall/seqdeliver/internal/config"
	"github.com/ekvall/seqdeliver/internal/domain/delivery"
	"github.com/ekvall/seqdeliver/internal/logger"
	"github.com/ekvall/seqdeliver/internal/manifest"
	statusrepo "github.com/ekvall/seqdeliver/internal/repository/status"
)

// Options contains inputs for the staging entry point.
type Options struct {
	// ConfigPath is the path to the settings YAML file.
	ConfigPath string
	// ProjectID is the project to stage; it must match the metadata document.
	ProjectID string
	// MetadataPath is the delivery metadata YAML exported from the tracking system.
	MetadataPath string
	// Force re-stages samples already marked STAGED or DELIVERED.
	Force bool
}

// Run stages the delivery tree for one project: assembles the canonical
// folder layout, wires in manifests and moves the included samples through
// the IN_PROGRESS -> STAGED lifecycle.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "seqdeliver-stage")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	project, err := delivery.LoadProject(opts.MetadataPath)
	if err != nil {
		return fmt.Errorf("load delivery metadata: %w", err)
	}

	if opts.ProjectID != "" && opts.ProjectID != project.ID {
		return fmt.Errorf("project id %q does not match metadata project %q", opts.ProjectID, project.ID)
	}

	vars := map[string]string{"projectid": project.ID}

	stagingDir, err := config.ExpandPath(cfg.StagingPath, vars)
	if err != nil {
		return err
	}

	statusDir, err := config.ExpandPath(cfg.StatusDir, vars)
	if err != nil {
		return err
	}

	reportsDir := ""
	if cfg.ReportsDir != "" {
		if reportsDir, err = config.ExpandPath(cfg.ReportsDir, vars); err != nil {
			return err
		}
	}

	repo := statusrepo.NewFileRepository(statusDir)

	included, err := selectSamples(ctx, repo, project, opts.Force)
	if err != nil {
		return err
	}

	if len(included) == 0 {
		logger.Info(ctx, "All samples are already staged or delivered, nothing to do")
		return nil
	}

	deliveryID := uuid.NewString()
	ctx = logger.WithKV(ctx, "delivery_id", deliveryID)

	// The assembler only ever sees the included samples: folders and
	// manifest pairs of samples skipped by the lifecycle gating must not be
	// touched, their recorded state still describes them.
	scope := *project
	scope.Samples = included

	builder := manifest.NewBuilder(checksum.NewPool(cfg.ChecksumWorkers))
	assembler := NewAssembler(&scope, stagingDir, builder, reportsDir, cfg.AcknowledgementsFile)

	lock, err := acquireStagingLock(ctx, assembler.Root())
	if err != nil {
		return err
	}
	defer lock.release(ctx)

	for _, sample := range included {
		if err = repo.Set(ctx, project.ID, sample.ID, delivery.StatusInProgress, deliveryID); err != nil {
			return fmt.Errorf("mark %s in progress: %w", sample.ID, err)
		}
	}

	logger.InfoKV(ctx, "Staging delivery tree", "project", project.ID,
		"samples", len(included), "root", assembler.Root())

	if err = assembler.Assemble(ctx); err != nil {
		for _, sample := range included {
			if statusErr := repo.Set(ctx, project.ID, sample.ID, delivery.StatusFailed, deliveryID); statusErr != nil {
				logger.Warnf(ctx, "unable to mark %s failed: %v", sample.ID, statusErr)
			}
		}

		return fmt.Errorf("assemble delivery tree: %w", err)
	}

	for _, sample := range included {
		if err = repo.Set(ctx, project.ID, sample.ID, delivery.StatusStaged, deliveryID); err != nil {
			return fmt.Errorf("mark %s staged: %w", sample.ID, err)
		}
	}

	logger.InfoKV(ctx, "Staging completed", "project", project.ID, "root", assembler.Root())

	return nil
}

// selectSamples decides which declared samples this run should stage.
// Samples already STAGED or DELIVERED are skipped unless forced; a sample
// stuck IN_PROGRESS after a crash is only taken over when forced.
func selectSamples(ctx context.Context, repo *statusrepo.FileRepository, project *delivery.Project, force bool) ([]delivery.Sample, error) {
	included := make([]delivery.Sample, 0, len(project.Samples))

	for _, sample := range project.Samples {
		record, err := repo.Get(ctx, project.ID, sample.ID)
		if err != nil {
			return nil, fmt.Errorf("read status of %s: %w", sample.ID, err)
		}

		switch record.Status {
		case delivery.StatusStaged, delivery.StatusDelivered:
			if !force {
				logger.InfoKV(ctx, "Skipping sample", "sample", sample.ID, "status", string(record.Status))
				continue
			}

			logger.InfoKV(ctx, "Re-staging sample on request", "sample", sample.ID, "status", string(record.Status))
		case delivery.StatusInProgress:
			// The staging lock rules out a live run; without force this still
			// looks like someone else's delivery.
			if !force {
				return nil, fmt.Errorf("%w: sample %s", errStagingInProgress, sample.ID)
			}

			logger.WarnKV(ctx, "Taking over sample stuck in progress", "sample", sample.ID)
		case delivery.StatusNotDelivered, delivery.StatusFailed:
		}

		included = append(included, sample)
	}

	return included, nil
}
