package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/lidarcore/internal/config"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/metrics"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/specialistvlad/lidarcore/internal/variant"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	model    *config.Model
	registry *registry.Registry[operation.Constructor]
	required map[string][]string
	variants variant.Source
	db       *variant.SQLSource

	promRegistry *prometheus.Registry
	metrics      *metrics.Metrics
	httpServer   *http.Server
}

// NewApp loads the run configuration and wires every service. The returned
// App must be closed.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, loader config.Loader, modules ...Module) (*App, error) {
	bootLogger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, bootLogger)

	model, err := loader.Load(ctx, config.Defaults(), appConfig.RunPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := model.ApplyEnv(config.EnvPrefix); err != nil {
		return nil, err
	}
	applyFlags(model, appConfig)
	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(model.Log.Level, model.Log.Format, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration loaded.", "stages", model.Families(), "montecarlo", model.MonteCarlo.Enabled)

	reg := registry.New[operation.Constructor](logger)
	if len(modules) == 0 {
		modules = coreModules
	}
	required := make(map[string][]string)
	for _, mod := range modules {
		mod.Register(reg)
		for family, args := range mod.Families() {
			required[family] = args
		}
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "families", reg.Families())

	a := &App{
		outW:         outW,
		logger:       logger,
		model:        model,
		registry:     reg,
		required:     required,
		promRegistry: prometheus.NewRegistry(),
	}
	a.metrics = metrics.New(a.promRegistry)

	sources := variant.Chain{variant.Static(model.VariantOverrides)}
	if model.VariantsDB != "" {
		db, err := variant.OpenSQLite(ctx, model.VariantsDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open variants database: %w", err)
		}
		a.db = db
		sources = append(sources, db)
		logger.Debug("Variants database opened.", "path", model.VariantsDB)
	}
	a.variants = append(sources, model.Variants())

	return a, nil
}

// applyFlags copies non-empty command-line values onto m.
func applyFlags(m *config.Model, c *Config) {
	if c.LogLevel != "" {
		m.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		m.Log.Format = c.LogFormat
	}
	if c.MetricsPort > 0 {
		m.MetricsPort = c.MetricsPort
	}
	if c.VariantsDB != "" {
		m.VariantsDB = c.VariantsDB
	}
}

// factories builds one factory per registered family.
func (a *App) factories() map[string]*operation.Factory {
	out := make(map[string]*operation.Factory)
	for _, family := range a.registry.Families() {
		out[family] = &operation.Factory{
			Family:   family,
			Required: a.required[family],
			Variants: a.variants,
			Registry: a.registry,
		}
	}
	return out
}

// Resolution is the variant a family resolves to.
type Resolution struct {
	Family  string
	Variant string
	// Bound reports whether the registry has an implementation for Variant.
	Bound bool
	Err   error
}

// Variants resolves every registered or configured family.
func (a *App) Variants(ctx context.Context) []Resolution {
	seen := make(map[string]struct{})
	var families []string
	for _, f := range append(a.registry.Families(), a.model.Families()...) {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			families = append(families, f)
		}
	}
	sort.Strings(families)

	out := make([]Resolution, 0, len(families))
	for _, family := range families {
		r := Resolution{Family: family}
		r.Variant, r.Err = a.variants.Variant(ctx, family)
		if r.Err == nil {
			if forced, ok := a.registry.Override(family); ok {
				r.Variant = forced
			}
			_, r.Bound = a.registry.Resolve(family, r.Variant)
		}
		out = append(out, r)
	}
	return out
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Model returns the loaded configuration.
func (a *App) Model() *config.Model { return a.model }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry[operation.Constructor] { return a.registry }

// Close releases the metrics server and the variants database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.closeMetricsServer(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close variants database: %w", err))
		}
	}
	return errors.Join(errs...)
}
