package verify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ekvall/seqdeliver/internal/checksum"
	"github.com/ekvall/seqdeliver/internal/logger"
)

// Options contains inputs for the verification entry point.
type Options struct {
	// DigestPath is the .md5 file to check.
	DigestPath string
	// TargetDir is the directory the manifest describes. Defaults to the
	// directory containing the .md5 file, matching how md5sum -c is run.
	TargetDir string
	// Workers bounds concurrent digest computation. Zero means one per CPU.
	Workers int
}

// ErrIntegrityCheckFailed is returned when any file mismatches or is
// missing. The failing filenames are always reported alongside.
var ErrIntegrityCheckFailed = errors.New("integrity check failed")

// Run verifies a delivered tree against its .md5 manifest and prints the
// per-file report. The error wraps ErrIntegrityCheckFailed when any entry
// fails, which the CLI maps to a non-zero exit code.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "seqdeliver-verify")

	targetDir := opts.TargetDir
	if targetDir == "" {
		targetDir = filepath.Dir(opts.DigestPath)
	}

	logger.InfoKV(ctx, "Verifying delivery", "digest_file", opts.DigestPath, "dir", targetDir)

	report, err := Check(ctx, checksum.NewPool(opts.Workers), opts.DigestPath, targetDir)
	if err != nil {
		return err
	}

	fmt.Println(RenderTable(report)) //nolint:forbidigo // The report table is the command's output.

	if failed := report.Failed(); len(failed) > 0 {
		for _, entry := range failed {
			logger.ErrorKV(ctx, "File failed verification", "file", entry.Path, "status", string(entry.Status))
		}

		return fmt.Errorf("%w: %s", ErrIntegrityCheckFailed, report.Summary())
	}

	logger.InfoKV(ctx, "All files verified", "files", len(report.Entries))

	return nil
}
