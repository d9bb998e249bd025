package delivery

import "fmt"

// Pipeline identifies the analysis pipeline behind a delivery. The pipeline
// decides two naming details that differ between workflows: the lane info
// report filename and where result folders live.
type Pipeline string

const (
	// PipelineSarek is the Sarek germline pipeline. Results live per sample
	// in 01-SarekGermline-Results and the lane report is <name>_lanes_info.txt.
	PipelineSarek Pipeline = "sarek"
	// PipelineMethylseq is the methylseq pipeline. Results live in a shared
	// results folder at project scope and the lane report is <name>_lane_info.txt.
	PipelineMethylseq Pipeline = "methylseq"
	// PipelineNone means raw data only, no result folders.
	PipelineNone Pipeline = ""
)

// Validate rejects unknown pipeline names. Both report-naming variants exist
// in the wild, so an unknown name must fail loudly instead of silently
// picking one.
func (p Pipeline) Validate() error {
	switch p {
	case PipelineSarek, PipelineMethylseq, PipelineNone:
		return nil
	default:
		return fmt.Errorf("unknown pipeline %q", string(p))
	}
}

// LaneInfoFilename returns the lane info report filename for the project
// name. Sarek deliveries historically use the plural form.
func (p Pipeline) LaneInfoFilename(projectName string) string {
	if p == PipelineSarek {
		return projectName + "_lanes_info.txt"
	}

	return projectName + "_lane_info.txt"
}

// SampleResultsDir returns the result folder name inside each sample folder,
// or empty when the pipeline keeps results at project scope.
func (p Pipeline) SampleResultsDir() string {
	if p == PipelineSarek {
		return "01-SarekGermline-Results"
	}

	return ""
}

// ProjectResultsDir returns the shared result folder name at project scope,
// or empty when results are per sample.
func (p Pipeline) ProjectResultsDir() string {
	if p == PipelineMethylseq {
		return "results"
	}

	return ""
}
