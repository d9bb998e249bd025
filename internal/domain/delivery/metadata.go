package delivery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekvall/seqdeliver/internal/fastq"
)

// Project describes one delivery batch. It is supplied explicitly by the
// operator (exported from the tracking system beforehand), never fetched
// over the network by this tool.
type Project struct {
	// ID is the project identifier and names the delivery root folder.
	ID string `yaml:"project"`
	// Name is the human-readable project name used in report filenames.
	Name string `yaml:"name"`
	// Pipeline is the analysis pipeline that produced the result folders.
	Pipeline Pipeline `yaml:"pipeline"`
	// Samples are the samples included in this delivery, in declaration order.
	Samples []Sample `yaml:"samples"`
}

// Sample is one sequenced sample within a project.
type Sample struct {
	// ID is the sample identifier and names the per-sample folder.
	ID string `yaml:"id"`
	// Flowcells lists the flowcells with raw data for this sample. A sample
	// with no flowcells is legitimate (result-only re-delivery) and is only
	// a warning condition.
	Flowcells []Flowcell `yaml:"flowcells"`
}

// Flowcell groups the raw read files produced on one flowcell.
type Flowcell struct {
	// ID is the flowcell identifier and names the folder under 02-FASTQ.
	ID string `yaml:"id"`
	// Lanes lists the lanes of this flowcell carrying the sample.
	Lanes []Lane `yaml:"lanes"`
}

// Lane describes the read files expected from a single flowcell lane.
type Lane struct {
	// Number is the lane number on the flowcell.
	Number int `yaml:"lane"`
	// BCLConversion identifies the BCL conversion run.
	BCLConversion int `yaml:"bcl_conversion"`
	// Reads is the number of reads per cluster (1 or 2).
	Reads int `yaml:"reads"`
	// Volumes is the number of files per read.
	Volumes int `yaml:"volumes"`
}

var (
	errProjectIDRequired = errors.New("project id is required")
	errSampleIDRequired  = errors.New("sample id is required")
	errDuplicateSample   = errors.New("duplicate sample id")
)

// LoadProject reads and validates delivery metadata from a YAML file.
func LoadProject(path string) (*Project, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var project Project
	if err = yaml.Unmarshal(contents, &project); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	if err = project.Validate(); err != nil {
		return nil, err
	}

	return &project, nil
}

// Validate checks identifiers and lane descriptions.
func (p *Project) Validate() error {
	if p.ID == "" {
		return errProjectIDRequired
	}

	if p.Name == "" {
		p.Name = p.ID
	}

	if err := p.Pipeline.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(p.Samples))

	for i := range p.Samples {
		sample := &p.Samples[i]

		if sample.ID == "" {
			return errSampleIDRequired
		}

		if _, dup := seen[sample.ID]; dup {
			return fmt.Errorf("%w: %s", errDuplicateSample, sample.ID)
		}

		seen[sample.ID] = struct{}{}

		for _, flowcell := range sample.Flowcells {
			if flowcell.ID == "" {
				return fmt.Errorf("sample %s: flowcell id is required", sample.ID)
			}

			for _, lane := range flowcell.Lanes {
				if err := lane.validate(); err != nil {
					return fmt.Errorf("sample %s, flowcell %s: %w", sample.ID, flowcell.ID, err)
				}
			}
		}
	}

	return nil
}

// validate checks a single lane description.
func (l Lane) validate() error {
	if l.Number <= 0 {
		return fmt.Errorf("lane number must be positive, got %d", l.Number)
	}

	if l.BCLConversion <= 0 {
		return fmt.Errorf("lane %d: bcl_conversion must be positive, got %d", l.Number, l.BCLConversion)
	}

	if l.Reads != 1 && l.Reads != 2 {
		return fmt.Errorf("lane %d: reads must be 1 or 2, got %d", l.Number, l.Reads)
	}

	if l.Volumes <= 0 {
		return fmt.Errorf("lane %d: volumes must be positive, got %d", l.Number, l.Volumes)
	}

	return nil
}

// ExpectedFilenames returns the canonical read filenames for a sample on this lane.
func (l Lane) ExpectedFilenames(sampleID string) []string {
	names := make([]string, 0, l.Reads*l.Volumes)

	for read := 1; read <= l.Reads; read++ {
		for volume := 1; volume <= l.Volumes; volume++ {
			names = append(names, fastq.Name{
				Sample:        sampleID,
				BCLConversion: l.BCLConversion,
				Lane:          l.Number,
				Read:          read,
				Volume:        volume,
			}.String())
		}
	}

	return names
}

// Timestamp returns the current UTC time in ISO-8601 format with millisecond
// precision, the format used in acknowledgement files.
func Timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
