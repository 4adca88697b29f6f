// Package pipeline runs stages against one measurement run's services and
// turns the first fatal error into a structured Status.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/metrics"
	"github.com/specialistvlad/lidarcore/internal/montecarlo"
	"github.com/specialistvlad/lidarcore/internal/operation"
)

// Env carries the services a stage may use. It is built once per run and
// passed explicitly to every stage.
type Env struct {
	Store     *datastore.Store
	Factories map[string]*operation.Factory
	// MonteCarlo re-derives error bands when set; nil disables it.
	MonteCarlo *montecarlo.Engine
}

// Factory returns the factory of family.
func (e *Env) Factory(family string) (*operation.Factory, error) {
	f, ok := e.Factories[family]
	if !ok {
		known := make([]string, 0, len(e.Factories))
		for k := range e.Factories {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("no factory for family '%s' (known: %v)", family, known)
	}
	return f, nil
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, env *Env) error
}

// StageFunc adapts a function to Stage.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, env *Env) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, env *Env) error { return s.Fn(ctx, env) }

// Runner executes stages sequentially.
type Runner struct {
	env     *Env
	metrics *metrics.Metrics
}

// NewRunner creates a runner over env. m may be nil.
func NewRunner(env *Env, m *metrics.Metrics) *Runner {
	return &Runner{env: env, metrics: m}
}

// Run executes stages in order and stops at the first error.
func (r *Runner) Run(ctx context.Context, stages ...Stage) Status {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("🚀 Starting measurement run.", "stages", len(stages))
	for _, st := range stages {
		stageLogger := logger.With("stage", st.Name())
		if err := ctx.Err(); err != nil {
			return r.finish(stageLogger, runID, st.Name(), err)
		}

		stageLogger.Info("▶️ Running stage")
		started := time.Now()
		err := st.Run(ctxlog.WithLogger(ctx, stageLogger), r.env)
		if err != nil {
			return r.finish(stageLogger, runID, st.Name(), err)
		}
		r.metrics.StageDone(st.Name(), string(KindOK))
		stageLogger.Info("✅ Stage finished", "duration", time.Since(started))
	}

	logger.Info("🏁 Measurement run finished.")
	return Status{RunID: runID, Kind: KindOK}
}

func (r *Runner) finish(logger *slog.Logger, runID, stage string, err error) Status {
	kind := Classify(err)
	r.metrics.StageDone(stage, string(kind))
	logger.Error("Stage failed, aborting run.", "kind", kind, "error", err)
	return Status{RunID: runID, Stage: stage, Kind: kind, Message: err.Error(), Err: err}
}
