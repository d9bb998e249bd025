package stage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ekvall/seqdeliver/internal/domain/delivery"
	"github.com/ekvall/seqdeliver/internal/fastq"
	"github.com/ekvall/seqdeliver/internal/logger"
	"github.com/ekvall/seqdeliver/internal/manifest"
)

const (
	// reportsDirName holds the externally produced QC reports.
	reportsDirName = "00-Reports"
	// manifestFilesDirName holds the per-sample-per-lane manifest files.
	manifestFilesDirName = "manifestFiles"
	// fastqDirName holds raw read data inside every sample folder.
	fastqDirName = "02-FASTQ"
	// acknowledgementsName is the publication acknowledgement file at the root.
	acknowledgementsName = "ACKNOWLEDGEMENTS.txt"
	// miscScope names the project-wide manifest pair covering non-raw data.
	miscScope = "miscellaneous"

	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Assembler builds the canonical delivery tree for one project and wires in
// the manifest pairs. It creates scaffolding and places external artifacts;
// it never generates reports or raw data itself.
type Assembler struct {
	// project is the delivery metadata, supplied by the operator.
	project *delivery.Project
	// root is the delivery tree root, <staging>/<ProjectID>.
	root string
	// builder writes the manifest pairs.
	builder *manifest.Builder
	// reportsDir is the source folder for external report artifacts. Optional.
	reportsDir string
	// acknowledgementsFile is the source of ACKNOWLEDGEMENTS.txt. Optional.
	acknowledgementsFile string
}

// NewAssembler returns an assembler for the given project rooted below stagingDir.
func NewAssembler(project *delivery.Project, stagingDir string, builder *manifest.Builder, reportsDir, acknowledgementsFile string) *Assembler {
	return &Assembler{
		project:              project,
		root:                 filepath.Join(stagingDir, project.ID),
		builder:              builder,
		reportsDir:           reportsDir,
		acknowledgementsFile: acknowledgementsFile,
	}
}

// Root returns the delivery tree root directory.
func (a *Assembler) Root() string {
	return a.root
}

// Assemble runs the full staging sequence: scaffold, artifact placement,
// naming validation and manifest generation. The manifest round-trip
// invariant is enforced before the tree is declared complete; a violation
// aborts the staging before any handoff can happen.
func (a *Assembler) Assemble(ctx context.Context) error {
	if err := a.Scaffold(ctx); err != nil {
		return err
	}

	if err := a.PlaceReports(ctx); err != nil {
		return err
	}

	if err := a.PlaceAcknowledgements(ctx); err != nil {
		return err
	}

	if err := a.WriteLaneManifests(ctx); err != nil {
		return err
	}

	if unparseable := a.ValidateFASTQNames(ctx); len(unparseable) > 0 {
		logger.WarnKV(ctx, "Files under FASTQ folders do not match the naming grammar",
			"count", len(unparseable), "files", strings.Join(unparseable, ", "))
	}

	if err := a.WriteSampleManifests(ctx); err != nil {
		return err
	}

	if err := a.WriteMiscellaneousManifest(ctx); err != nil {
		return err
	}

	return nil
}

// Scaffold creates the canonical folder structure. Existing folders are left
// untouched, in particular pipeline-result folders already populated by the
// analysis pipeline.
func (a *Assembler) Scaffold(ctx context.Context) error {
	dirs := []string{
		a.root,
		filepath.Join(a.root, reportsDirName),
		filepath.Join(a.root, reportsDirName, manifestFilesDirName),
	}

	if shared := a.project.Pipeline.ProjectResultsDir(); shared != "" {
		dirs = append(dirs, filepath.Join(a.root, shared))
	}

	for _, sample := range a.project.Samples {
		if len(sample.Flowcells) == 0 {
			logger.WarnKV(ctx, "Sample declared without flowcells, expecting result-only delivery",
				"sample", sample.ID)
		}

		dirs = append(dirs, filepath.Join(a.root, sample.ID))

		for _, flowcell := range sample.Flowcells {
			dirs = append(dirs, filepath.Join(a.root, sample.ID, fastqDirName, flowcell.ID))
		}

		if resultsDir := a.project.Pipeline.SampleResultsDir(); resultsDir != "" {
			dirs = append(dirs, filepath.Join(a.root, sample.ID, resultsDir))
		}
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return nil
}

// PlaceReports copies the external QC report artifacts into 00-Reports under
// their canonical names. Artifacts the QC tooling has not produced yet are
// warnings, not failures.
func (a *Assembler) PlaceReports(ctx context.Context) error {
	if a.reportsDir == "" {
		logger.Info(ctx, "No reports directory configured, skipping report placement")
		return nil
	}

	for _, name := range a.reportArtifacts() {
		src := filepath.Join(a.reportsDir, name)
		dst := filepath.Join(a.root, reportsDirName, name)

		if _, err := os.Stat(src); err != nil {
			logger.WarnKV(ctx, "Report artifact not available", "artifact", name, "reason", err.Error())
			continue
		}

		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("place report %s: %w", name, err)
		}
	}

	return nil
}

// reportArtifacts returns the canonical report filenames for this project.
func (a *Assembler) reportArtifacts() []string {
	name := a.project.Name

	return []string{
		name + "_project_summary.html",
		name + "_sample_info.txt",
		a.project.Pipeline.LaneInfoFilename(name),
		name + "_library_info.txt",
		name + "_multiqc_report.html",
	}
}

// PlaceAcknowledgements copies the acknowledgement text to the tree root.
func (a *Assembler) PlaceAcknowledgements(ctx context.Context) error {
	if a.acknowledgementsFile == "" {
		logger.Info(ctx, "No acknowledgements file configured, skipping")
		return nil
	}

	dst := filepath.Join(a.root, acknowledgementsName)
	if err := copyFile(a.acknowledgementsFile, dst); err != nil {
		return fmt.Errorf("place %s: %w", acknowledgementsName, err)
	}

	return nil
}

// WriteLaneManifests writes one manifest file per sample, flowcell and lane
// into 00-Reports/manifestFiles, listing the canonical read filenames.
func (a *Assembler) WriteLaneManifests(_ context.Context) error {
	dir := filepath.Join(a.root, reportsDirName, manifestFilesDirName)

	for _, sample := range a.project.Samples {
		for _, flowcell := range sample.Flowcells {
			for _, lane := range flowcell.Lanes {
				name := fmt.Sprintf("%s.%s.%s.%s_%d_%d_manifest.txt",
					sample.ID, fastqDirName, flowcell.ID, a.project.ID, lane.BCLConversion, lane.Number)

				contents := strings.Join(lane.ExpectedFilenames(sample.ID), "\n") + "\n"

				if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), fileMode); err != nil {
					return fmt.Errorf("write lane manifest %s: %w", name, err)
				}
			}
		}
	}

	return nil
}

// ValidateFASTQNames checks every file under the flowcell folders against
// the filename grammar and reports the offenders. Missing expected files are
// logged as warnings: raw data is placed by upstream tooling and a partial
// re-delivery is legitimate.
func (a *Assembler) ValidateFASTQNames(ctx context.Context) []string {
	var unparseable []string

	for _, sample := range a.project.Samples {
		for _, flowcell := range sample.Flowcells {
			dir := filepath.Join(a.root, sample.ID, fastqDirName, flowcell.ID)

			entries, err := os.ReadDir(dir)
			if err != nil {
				logger.WarnKV(ctx, "Unable to list flowcell folder", "dir", dir, "reason", err.Error())
				continue
			}

			present := make(map[string]struct{}, len(entries))

			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}

				present[entry.Name()] = struct{}{}

				if _, parseErr := fastq.Parse(entry.Name()); parseErr != nil {
					unparseable = append(unparseable, filepath.Join(dir, entry.Name()))
				}
			}

			for _, lane := range flowcell.Lanes {
				for _, expected := range lane.ExpectedFilenames(sample.ID) {
					if _, ok := present[expected]; !ok {
						logger.WarnKV(ctx, "Expected read file not present",
							"sample", sample.ID, "flowcell", flowcell.ID, "file", expected)
					}
				}
			}
		}
	}

	sort.Strings(unparseable)

	return unparseable
}

// WriteSampleManifests writes the <Sample>.lst/.md5 pair at the tree root
// for every sample folder, covering all files below the sample folder.
func (a *Assembler) WriteSampleManifests(ctx context.Context) error {
	for _, sample := range a.project.Samples {
		files, err := collectFiles(a.root, func(rel string) bool {
			return strings.HasPrefix(rel, sample.ID+"/")
		})
		if err != nil {
			return fmt.Errorf("collect files for sample %s: %w", sample.ID, err)
		}

		if len(files) == 0 {
			logger.WarnKV(ctx, "Sample folder holds no files, writing empty manifest pair", "sample", sample.ID)
		}

		if err = a.builder.Write(ctx, a.root, a.root, sample.ID, files); err != nil {
			return err
		}

		if err = manifest.Check(manifest.ListPath(a.root, sample.ID), manifest.DigestPath(a.root, sample.ID)); err != nil {
			return fmt.Errorf("sample %s: %w", sample.ID, err)
		}

		logger.InfoKV(ctx, "Wrote sample manifest pair", "sample", sample.ID, "files", len(files))
	}

	return nil
}

// WriteMiscellaneousManifest writes the project-wide manifest pair over
// everything except raw read data and the manifest pairs themselves. Raw
// data volume would make a combined manifest unwieldy; its integrity is
// covered by the per-sample scope.
func (a *Assembler) WriteMiscellaneousManifest(ctx context.Context) error {
	files, err := collectFiles(a.root, func(rel string) bool {
		if fastq.IsFASTQ(rel) {
			return false
		}

		return !strings.HasSuffix(rel, manifest.ListSuffix) && !strings.HasSuffix(rel, manifest.DigestSuffix)
	})
	if err != nil {
		return fmt.Errorf("collect miscellaneous files: %w", err)
	}

	if err = a.builder.Write(ctx, a.root, a.root, miscScope, files); err != nil {
		return err
	}

	if err = manifest.Check(manifest.ListPath(a.root, miscScope), manifest.DigestPath(a.root, miscScope)); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Wrote miscellaneous manifest pair", "files", len(files))

	return nil
}

// collectFiles walks root and returns slash-separated relative paths of
// regular files accepted by keep. Lock and marker files are never included.
func collectFiles(root string, keep func(rel string) bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		base := filepath.Base(rel)
		if base == lockFilename || base == markerFilename {
			return nil
		}

		if keep(rel) {
			files = append(files, rel)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}

// copyFile streams src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
