package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/montecarlo"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/pipeline"
	"github.com/specialistvlad/lidarcore/internal/stages"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
)

// Report is the outcome of one run.
type Report struct {
	Status pipeline.Status
	// Keys lists every populated store slot at the end of the run.
	Keys []datastore.Key
}

// Run executes the pipeline on the configured synthetic measurement. A failed
// run returns both the report and an error wrapping the stage error.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.model.MetricsPort > 0 && a.httpServer == nil {
		if err := a.startMetricsServer(a.model.MetricsPort); err != nil {
			return nil, err
		}
	}

	syn := a.model.Synthetic
	store := datastore.New(datastore.WithMetrics(a.metrics))
	if err := seedSynthetic(store, syn, time.Now().UTC().Truncate(time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to seed synthetic measurement: %w", err)
	}

	env := &pipeline.Env{Store: store, Factories: a.factories()}
	if a.model.MonteCarlo.Enabled {
		cfg, err := a.model.MonteCarloConfig()
		if err != nil {
			return nil, err
		}
		engine, err := montecarlo.New(cfg, montecarlo.WithMetrics(a.metrics))
		if err != nil {
			return nil, err
		}
		env.MonteCarlo = engine
	}

	status := pipeline.NewRunner(env, a.metrics).Run(ctx, a.stages()...)
	report := &Report{Status: status, Keys: store.Keys()}
	if !status.OK() {
		return report, fmt.Errorf("run %s failed at stage '%s' (%s): %w", status.RunID, status.Stage, status.Kind, status.Err)
	}
	a.logger.Debug("App.Run method finished.", "slots", len(report.Keys))
	return report, nil
}

// stages lays out the dry-run pipeline: prepare every channel, smooth each
// to both resolution classes, then screen both classes for clouds.
func (a *App) stages() []pipeline.Stage {
	syn := a.model.Synthetic
	args := operation.Args(a.model.StageArguments(smoothing.Family))

	steps := []pipeline.Stage{
		&stages.PrepareSignals{Product: syn.Product, Window: syn.PrepareWindow, Arguments: args},
	}
	for _, ch := range syn.Channels {
		basic := syn.Product + "_" + ch
		steps = append(steps,
			&stages.CommonSmoothing{Source: syn.Product, Channel: ch, Product: basic, Resolution: artifact.High, Window: 1, Arguments: args},
			&stages.CommonSmoothing{Source: syn.Product, Channel: ch, Product: basic, Resolution: artifact.Low, Window: syn.CommonWindow, Arguments: args},
		)
	}
	return append(steps,
		&stages.CloudScreen{Resolution: artifact.High},
		&stages.CloudScreen{Resolution: artifact.Low},
	)
}
