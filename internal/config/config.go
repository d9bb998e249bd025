package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the seqdeliver binaries.
type Config struct {
	// StagingPath is the directory where delivery trees are assembled. It is
	// a template and may contain <PROJECTID>-style placeholders.
	StagingPath string `yaml:"staging_path"`
	// StatusDir is where per-project delivery status files and delivery
	// acknowledgements are kept. Also a template.
	StatusDir string `yaml:"status_dir"`
	// ReportsDir is where the external QC tooling drops report artifacts for
	// pickup. Also a template.
	ReportsDir string `yaml:"reports_dir"`
	// AcknowledgementsFile is the source text placed as ACKNOWLEDGEMENTS.txt
	// in every delivery. Optional.
	AcknowledgementsFile string `yaml:"acknowledgements_file"`
	// ChecksumWorkers bounds concurrent digest computation. Zero means one
	// worker per CPU.
	ChecksumWorkers int `yaml:"checksum_workers"`
	// TrackingBaseURL is the base URL of the external tracking system. It is
	// consumed by surrounding tooling; seqdeliver itself never talks to it.
	TrackingBaseURL string `yaml:"tracking_base_url"`
	// TrackingToken is the API token paired with TrackingBaseURL. The
	// SEQDELIVER_TRACKING_TOKEN environment variable takes precedence and is
	// never persisted back to YAML.
	TrackingToken string `yaml:"tracking_token,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "seqdeliver-settings.yaml"

	// TrackingTokenEnv overrides the tracking token from the environment.
	TrackingTokenEnv = "SEQDELIVER_TRACKING_TOKEN" //nolint:gosec // Name of an env var, not a credential.

	// defaultFilePermissions keeps settings private since they may carry a token.
	defaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errStagingPathRequired is returned when the staging path is missing.
	errStagingPathRequired = errors.New("staging path must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if token := os.Getenv(TrackingTokenEnv); token != "" {
		cfg.TrackingToken = token
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, defaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.StagingPath == "" {
		return errStagingPathRequired
	}

	if cfg.StatusDir == "" {
		cfg.StatusDir = cfg.StagingPath
	}

	if cfg.ChecksumWorkers < 0 {
		return fmt.Errorf("checksum workers must not be negative, got %d", cfg.ChecksumWorkers)
	}

	if cfg.TrackingBaseURL == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.TrackingBaseURL); err != nil {
		return fmt.Errorf("invalid tracking base URL: %w", err)
	}

	return nil
}
