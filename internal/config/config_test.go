package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing staging path.
	require.Error(t, Validate(new(Config)))

	// Bad tracking URL.
	require.Error(t, Validate(&Config{
		StagingPath:     "/srv/staging",
		TrackingBaseURL: "not a url",
	}))

	// Negative workers.
	require.Error(t, Validate(&Config{
		StagingPath:     "/srv/staging",
		ChecksumWorkers: -1,
	}))

	// Okay, with StatusDir defaulting to the staging path.
	cfg := &Config{
		StagingPath:     "/srv/staging/<PROJECTID>",
		TrackingBaseURL: "https://tracking.example.com/api/v1",
	}
	require.NoError(t, Validate(cfg))
	require.Equal(t, cfg.StagingPath, cfg.StatusDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		StagingPath:     "/srv/staging/<PROJECTID>",
		StatusDir:       "/srv/status",
		ChecksumWorkers: 4,
		TrackingBaseURL: "https://tracking.example.com",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.StagingPath, loaded.StagingPath)
	require.Equal(t, cfg.StatusDir, loaded.StatusDir)
	require.Equal(t, cfg.ChecksumWorkers, loaded.ChecksumWorkers)
}

// TestLoadTokenFromEnvironment ensures the env token wins over the file.
func TestLoadTokenFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, Save(path, &Config{
		StagingPath:   "/srv/staging",
		TrackingToken: "from-file",
	}))

	t.Setenv(TrackingTokenEnv, "from-env")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", loaded.TrackingToken)
}

// TestExpandPath covers substitution, pass-through and missing variables.
func TestExpandPath(t *testing.T) {
	t.Parallel()

	vars := map[string]string{"projectid": "P12345", "sampleid": "Sample1"}

	expanded, err := ExpandPath("/srv/staging/<PROJECTID>/<SAMPLEID>", vars)
	require.NoError(t, err)
	require.Equal(t, "/srv/staging/P12345/Sample1", expanded)

	expanded, err = ExpandPath("/srv/plain", vars)
	require.NoError(t, err)
	require.Equal(t, "/srv/plain", expanded)

	_, err = ExpandPath("/srv/<FLOWCELL>", vars)
	require.Error(t, err)
}

// TestLoadMissingFile surfaces the read error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
