package delivery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleMetadata = `project: P12345
name: A.Smith_26_01
pipeline: sarek
samples:
  - id: Sample1
    flowcells:
      - id: AAAAAAXX
        lanes:
          - lane: 1
            bcl_conversion: 1
            reads: 2
            volumes: 1
  - id: Sample2
    flowcells: []
`

// TestLoadProject parses a realistic metadata document.
func TestLoadProject(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMetadata), 0o600))

	project, err := LoadProject(path)
	require.NoError(t, err)
	require.Equal(t, "P12345", project.ID)
	require.Equal(t, "A.Smith_26_01", project.Name)
	require.Equal(t, PipelineSarek, project.Pipeline)
	require.Len(t, project.Samples, 2)
	require.Len(t, project.Samples[0].Flowcells, 1)
	require.Empty(t, project.Samples[1].Flowcells)
}

// TestValidate covers the rejection paths.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, (&Project{}).Validate())

	require.Error(t, (&Project{
		ID:      "P1",
		Samples: []Sample{{ID: "S1"}, {ID: "S1"}},
	}).Validate())

	require.Error(t, (&Project{
		ID:       "P1",
		Pipeline: Pipeline("unheard-of"),
	}).Validate())

	require.Error(t, (&Project{
		ID: "P1",
		Samples: []Sample{{
			ID:        "S1",
			Flowcells: []Flowcell{{ID: "FC", Lanes: []Lane{{Number: 1, BCLConversion: 1, Reads: 3, Volumes: 1}}}},
		}},
	}).Validate())

	// Name defaults to the project ID.
	project := &Project{ID: "P1"}
	require.NoError(t, project.Validate())
	require.Equal(t, "P1", project.Name)
}

// TestExpectedFilenames enumerates read and volume combinations in order.
func TestExpectedFilenames(t *testing.T) {
	t.Parallel()

	lane := Lane{Number: 2, BCLConversion: 1, Reads: 2, Volumes: 2}
	require.Equal(t, []string{
		"Sample1_1_2_1_1.fastq.gz",
		"Sample1_1_2_1_2.fastq.gz",
		"Sample1_1_2_2_1.fastq.gz",
		"Sample1_1_2_2_2.fastq.gz",
	}, lane.ExpectedFilenames("Sample1"))
}

// TestPipelineNaming pins both report-filename variants; neither is a typo
// for the other.
func TestPipelineNaming(t *testing.T) {
	t.Parallel()

	require.Equal(t, "P_lanes_info.txt", PipelineSarek.LaneInfoFilename("P"))
	require.Equal(t, "P_lane_info.txt", PipelineMethylseq.LaneInfoFilename("P"))
	require.Equal(t, "P_lane_info.txt", PipelineNone.LaneInfoFilename("P"))

	require.Equal(t, "01-SarekGermline-Results", PipelineSarek.SampleResultsDir())
	require.Empty(t, PipelineSarek.ProjectResultsDir())

	require.Empty(t, PipelineMethylseq.SampleResultsDir())
	require.Equal(t, "results", PipelineMethylseq.ProjectResultsDir())
}

// TestStatusTransitions walks the allowed lifecycle edges.
func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	require.True(t, StatusNotDelivered.CanTransition(StatusInProgress))
	require.True(t, StatusInProgress.CanTransition(StatusStaged))
	require.True(t, StatusInProgress.CanTransition(StatusFailed))
	require.True(t, StatusStaged.CanTransition(StatusDelivered))
	require.True(t, StatusDelivered.CanTransition(StatusInProgress))
	require.True(t, StatusFailed.CanTransition(StatusInProgress))

	require.False(t, StatusNotDelivered.CanTransition(StatusDelivered))
	require.False(t, StatusStaged.CanTransition(StatusFailed))
	require.False(t, Status("garbage").CanTransition(StatusInProgress))
}

// TestParseStatus checks accepted and rejected inputs.
func TestParseStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseStatus("STAGED")
	require.NoError(t, err)
	require.Equal(t, StatusStaged, status)

	_, err = ParseStatus("staged")
	require.Error(t, err)
}
