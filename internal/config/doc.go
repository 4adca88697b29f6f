// Package config defines the format-agnostic run configuration: logging,
// metrics, Monte Carlo settings, the variant chosen per operation family and
// the synthetic measurement used for dry runs.
//
// A Model starts from Defaults, is overlaid by a format-specific Loader (see
// the hcl_adapter package), then by LIDARCORE_* environment variables, and is
// finally checked by Validate.
package config
