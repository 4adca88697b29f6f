package app

import "errors"

// Config holds the process-level settings an App is built from. Flag values
// override the run file and the environment when non-empty.
type Config struct {
	// RunPaths are .hcl files or directories holding the run configuration.
	RunPaths []string

	LogFormat   string
	LogLevel    string
	MetricsPort int
	VariantsDB  string
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.RunPaths) == 0 {
		return nil, errors.New("at least one run file or directory is required")
	}
	return &cfg, nil
}
