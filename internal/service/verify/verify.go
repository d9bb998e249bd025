package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ekvall/seqdeliver/internal/checksum"
	"github.com/ekvall/seqdeliver/internal/logger"
	"github.com/ekvall/seqdeliver/internal/manifest"
)

// Status classifies one verified file.
type Status string

const (
	// StatusOK means the recomputed digest matches the manifest.
	StatusOK Status = "ok"
	// StatusMismatch means the file exists but its digest differs.
	StatusMismatch Status = "mismatch"
	// StatusMissing means the listed file is absent from the tree.
	StatusMissing Status = "missing"
)

// Entry is the verification outcome for a single manifest entry.
type Entry struct {
	// Path is the file path relative to the verified directory.
	Path string
	// Status is the per-file outcome.
	Status Status
}

// Report holds per-file outcomes for a whole manifest, in manifest order.
// Partial corruption needs partial remediation, so the report always names
// every file rather than collapsing into a single boolean.
type Report struct {
	// Entries are the per-file outcomes, one per manifest line.
	Entries []Entry
}

// Counts returns how many entries ended up in each status.
func (r *Report) Counts() (ok, mismatch, missing int) {
	for _, entry := range r.Entries {
		switch entry.Status {
		case StatusOK:
			ok++
		case StatusMismatch:
			mismatch++
		case StatusMissing:
			missing++
		}
	}

	return ok, mismatch, missing
}

// Failed returns the entries that did not verify, in manifest order.
func (r *Report) Failed() []Entry {
	var failed []Entry

	for _, entry := range r.Entries {
		if entry.Status != StatusOK {
			failed = append(failed, entry)
		}
	}

	return failed
}

// Check recomputes every digest listed in the .md5 file against dir and
// classifies each entry. Digest failures never short-circuit the pass: every
// file gets a verdict.
func Check(ctx context.Context, pool *checksum.Pool, md5Path, dir string) (*Report, error) {
	entries, err := manifest.ParseDigests(md5Path)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(entry.Path)))
	}

	digests, sumErr := pool.SumAll(ctx, paths)
	if sumErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		// Unreadable files become per-entry verdicts below.
		logger.Debugf(ctx, "digest pass reported errors: %v", sumErr)
	}

	report := &Report{Entries: make([]Entry, 0, len(entries))}

	for _, entry := range entries {
		absolute := filepath.Join(dir, filepath.FromSlash(entry.Path))

		digest, computed := digests[absolute]

		var status Status

		switch {
		case computed && digest == entry.Digest:
			status = StatusOK
		case computed:
			status = StatusMismatch
		default:
			status = classifyUnreadable(absolute)
		}

		report.Entries = append(report.Entries, Entry{Path: entry.Path, Status: status})
	}

	return report, nil
}

// classifyUnreadable separates files that vanished from files that exist but
// could not be read; the latter count as mismatches so they are re-requested.
func classifyUnreadable(path string) Status {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return StatusMissing
	}

	return StatusMismatch
}

// Summary renders the one-line outcome used in logs and error messages.
func (r *Report) Summary() string {
	ok, mismatch, missing := r.Counts()
	return fmt.Sprintf("%d ok, %d mismatch, %d missing", ok, mismatch, missing)
}
