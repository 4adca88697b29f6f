package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level attribute and block of a run file.
// Optional values are pointers so that an absent attribute leaves the base
// configuration untouched.
type fileRoot struct {
	MetricsPort *int             `hcl:"metrics_port,optional"`
	VariantsDB  *string          `hcl:"variants_db,optional"`
	Log         *LogBlock        `hcl:"log,block"`
	MonteCarlo  *MonteCarloBlock `hcl:"montecarlo,block"`
	Stages      []*StageBlock    `hcl:"stage,block"`
	Synthetic   *SyntheticBlock  `hcl:"synthetic,block"`
}

// LogBlock is the `log` block.
type LogBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// MonteCarloBlock is the `montecarlo` block. Its presence enables
// propagation unless `enabled = false` is set.
type MonteCarloBlock struct {
	Enabled         *bool   `hcl:"enabled,optional"`
	Iterations      *int    `hcl:"iterations,optional"`
	Workers         *int    `hcl:"workers,optional"`
	Seed            *uint64 `hcl:"seed,optional"`
	OnSampleFailure *string `hcl:"on_sample_failure,optional"`
}

// StageBlock is a `stage "<family>"` block.
type StageBlock struct {
	Family    string         `hcl:"family,label"`
	Variant   string         `hcl:"variant"`
	Arguments hcl.Expression `hcl:"arguments,optional"`
}

// SyntheticBlock is the `synthetic` block describing a dry-run measurement.
type SyntheticBlock struct {
	MeasurementID    *string   `hcl:"measurement_id,optional"`
	Station          *string   `hcl:"station,optional"`
	Product          *string   `hcl:"product,optional"`
	Channels         *[]string `hcl:"channels,optional"`
	Times            *int      `hcl:"times,optional"`
	Levels           *int      `hcl:"levels,optional"`
	BinWidth         *float64  `hcl:"bin_width,optional"`
	Value            *float64  `hcl:"value,optional"`
	Sigma            *float64  `hcl:"sigma,optional"`
	Calibration      *float64  `hcl:"calibration,optional"`
	CalibrationError *float64  `hcl:"calibration_error,optional"`
	PrepareWindow    *int      `hcl:"prepare_window,optional"`
	CommonWindow     *int      `hcl:"common_window,optional"`
	CloudBase        *int      `hcl:"cloud_base,optional"`
}
