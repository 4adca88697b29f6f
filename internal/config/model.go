package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/specialistvlad/lidarcore/internal/montecarlo"
	"github.com/specialistvlad/lidarcore/internal/variant"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIDARCORE"

// Model is the complete run configuration.
type Model struct {
	Log         Log        `envconfig:"LOG"`
	MetricsPort int        `envconfig:"METRICS_PORT" validate:"gte=0,lte=65535"`
	VariantsDB  string     `envconfig:"VARIANTS_DB"`
	MonteCarlo  MonteCarlo `envconfig:"MONTECARLO"`

	// VariantOverrides replaces the configured variant of a family, e.g.
	// LIDARCORE_VARIANTS=smoothing:passthrough.
	VariantOverrides map[string]string `envconfig:"VARIANTS"`

	Stages    map[string]*Stage `ignored:"true" validate:"dive"`
	Synthetic Synthetic         `ignored:"true"`
}

// Log configures the application logger.
type Log struct {
	Level  string `envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" validate:"oneof=text json"`
}

// MonteCarlo configures error propagation.
type MonteCarlo struct {
	Enabled         bool   `envconfig:"ENABLED"`
	Iterations      int    `envconfig:"ITERATIONS" validate:"gte=2"`
	Workers         int    `envconfig:"WORKERS" validate:"gte=1"`
	Seed            uint64 `envconfig:"SEED"`
	OnSampleFailure string `envconfig:"ON_SAMPLE_FAILURE" validate:"oneof=abort exclude"`
}

// Stage selects the variant of one operation family and carries the extra
// arguments handed to its constructor.
type Stage struct {
	Family    string `validate:"required"`
	Variant   string `validate:"required"`
	Arguments map[string]any
}

// Synthetic describes the generated measurement used by dry runs.
type Synthetic struct {
	MeasurementID    string   `validate:"required"`
	Station          string   `validate:"required"`
	Product          string   `validate:"required"`
	Channels         []string `validate:"min=1,dive,required"`
	Times            int      `validate:"gte=1"`
	Levels           int      `validate:"gte=1"`
	BinWidth         float64  `validate:"gt=0"`
	Value            float64
	Sigma            float64 `validate:"gte=0"`
	Calibration      float64 `validate:"gte=0"`
	CalibrationError float64 `validate:"gte=0"`
	PrepareWindow    int     `validate:"gte=1"`
	CommonWindow     int     `validate:"gte=1"`
	// CloudBase is the first cloudy level; -1 means a clear sky.
	CloudBase int `validate:"gte=-1"`
}

// Defaults returns the built-in configuration.
func Defaults() *Model {
	return &Model{
		Log: Log{Level: "info", Format: "text"},
		MonteCarlo: MonteCarlo{
			Iterations:      100,
			Workers:         1,
			Seed:            1,
			OnSampleFailure: "abort",
		},
		Stages: map[string]*Stage{
			smoothing.Family: {Family: smoothing.Family, Variant: smoothing.SlidingAverage},
		},
		Synthetic: Synthetic{
			MeasurementID: "20240501dry",
			Station:       "dry",
			Product:       "elastic",
			Channels:      []string{"532"},
			Times:         6,
			Levels:        120,
			BinWidth:      7.5,
			Value:         10,
			Sigma:         1,
			PrepareWindow: 3,
			CommonWindow:  5,
			CloudBase:     -1,
		},
	}
}

// ApplyEnv overlays environment variables with the given prefix.
func (m *Model) ApplyEnv(prefix string) error {
	if err := envconfig.Process(prefix, m); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	return nil
}

// Validate checks every field.
func (m *Model) Validate() error {
	v := validator.New()
	if err := v.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, st := range m.Stages {
		if st.Family != name {
			return fmt.Errorf("invalid configuration: stage '%s' names family '%s'", name, st.Family)
		}
	}
	return nil
}

// Variants returns the configured variant per family with environment
// overrides applied.
func (m *Model) Variants() variant.Static {
	out := make(variant.Static, len(m.Stages)+len(m.VariantOverrides))
	for family, st := range m.Stages {
		out[family] = st.Variant
	}
	for family, name := range m.VariantOverrides {
		out[family] = name
	}
	return out
}

// StageArguments returns the extra arguments of family, nil when none.
func (m *Model) StageArguments(family string) map[string]any {
	if st, ok := m.Stages[family]; ok {
		return st.Arguments
	}
	return nil
}

// Families lists the configured families, sorted.
func (m *Model) Families() []string {
	out := make([]string, 0, len(m.Stages))
	for family := range m.Stages {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}

// MonteCarloConfig converts the Monte Carlo section.
func (m *Model) MonteCarloConfig() (montecarlo.Config, error) {
	policy, err := montecarlo.ParseFailurePolicy(m.MonteCarlo.OnSampleFailure)
	if err != nil {
		return montecarlo.Config{}, err
	}
	return montecarlo.Config{
		Iterations:      m.MonteCarlo.Iterations,
		Workers:         m.MonteCarlo.Workers,
		Seed:            m.MonteCarlo.Seed,
		OnSampleFailure: policy,
	}, nil
}
