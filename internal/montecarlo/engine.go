package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/metrics"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Result is the reduced ensemble of one invocation.
type Result struct {
	// Error is the elementwise standard deviation of the ensemble.
	Error [][]float64
	// Mean is the elementwise ensemble mean.
	Mean [][]float64
	// Ensemble is the number of samples that entered the reduction.
	Ensemble int
	// Excluded lists the indices of samples dropped under the Exclude policy.
	Excluded []int
}

// Engine runs Monte Carlo invocations.
type Engine struct {
	cfg     Config
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics reports sample outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monte carlo config: %w", err)
	}
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Propagate runs the invocation for adapter and returns the propagated error.
func (e *Engine) Propagate(ctx context.Context, adapter Adapter) (*Result, error) {
	logger := ctxlog.Component(ctx, "montecarlo")
	started := time.Now()
	defer func() { e.metrics.MonteCarloDone(time.Since(started)) }()

	inputs, err := adapter.Data(ctx)
	if err != nil {
		return nil, fmt.Errorf("monte carlo inputs: %w", err)
	}
	if len(inputs) == 0 {
		return nil, errors.New("monte carlo adapter returned no inputs")
	}
	nt, nl, err := resultShape(adapter, inputs)
	if err != nil {
		return nil, err
	}
	var scalars map[string]Uncertain
	if sa, ok := adapter.(ScalarAdapter); ok {
		scalars = sa.Scalars()
		if err := checkScalars(scalars); err != nil {
			return nil, err
		}
	}

	samples := drawSamples(e.cfg.Iterations, e.cfg.Seed, inputs, scalars)
	logger.Debug("Monte Carlo samples drawn.",
		"iterations", e.cfg.Iterations,
		"inputs", len(inputs),
		"scalars", len(scalars),
		"workers", e.cfg.Workers,
		"policy", e.cfg.OnSampleFailure.String(),
	)

	results, failed, err := e.runAll(ctx, adapter, samples, nt, nl)
	if err != nil {
		return nil, err
	}

	res, err := e.reduce(results, failed, nt, nl)
	if err != nil {
		return nil, err
	}
	logger.Debug("Monte Carlo invocation finished.", "ensemble", res.Ensemble, "excluded", len(res.Excluded), "duration", time.Since(started))
	return res, nil
}

// runAll executes every sample. Results are indexed by sample index; under
// Exclude, failed holds the causes of dropped samples.
func (e *Engine) runAll(ctx context.Context, adapter Adapter, samples []*Sample, nt, nl int) ([]*artifact.Artifact, *failures, error) {
	results := make([]*artifact.Artifact, len(samples))
	failed := &failures{byIndex: make(map[int]error)}

	handle := func(ctx context.Context, s *Sample) error {
		out, err := e.runSample(ctx, adapter, s, nt, nl)
		if err == nil {
			e.metrics.Sample("ok")
			results[s.Index] = out
			return nil
		}
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		return e.fail(ctx, s.Index, err, failed)
	}

	if !e.cfg.Parallel() {
		for _, s := range samples {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if err := handle(ctx, s); err != nil {
				return nil, nil, err
			}
		}
		return results, failed, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, s := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return handle(gctx, s)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, failed, nil
}

// runSample invokes the adapter and checks the result is well formed and of
// the expected nt x nl shape. A panicking adapter counts as a failed sample.
func (e *Engine) runSample(ctx context.Context, adapter Adapter, s *Sample, nt, nl int) (out *artifact.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = adapter.Run(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("malformed result: %w", err)
	}
	if t, l := out.Shape(); t != nt || l != nl {
		return nil, fmt.Errorf("malformed result: %w: shape %dx%d, expected %dx%d", artifact.ErrShapeMismatch, t, l, nt, nl)
	}
	return out, nil
}

// resultShape is the shape every sample result must have: the one the adapter
// declares, or else the shape shared by all of its inputs.
func resultShape(adapter Adapter, inputs operation.Inputs) (int, int, error) {
	if sa, ok := adapter.(ShapedAdapter); ok {
		nt, nl := sa.ResultShape()
		return nt, nl, nil
	}
	var nt, nl int
	for i, name := range sortedKeys(inputs) {
		t, l := inputs[name].Shape()
		if i == 0 {
			nt, nl = t, l
			continue
		}
		if t != nt || l != nl {
			return 0, 0, fmt.Errorf("monte carlo inputs differ in shape (%s is %dx%d, expected %dx%d), adapter must declare its result shape: %w",
				name, t, l, nt, nl, artifact.ErrShapeMismatch)
		}
	}
	return nt, nl, nil
}

// checkScalars rejects scalars that cannot be drawn from.
func checkScalars(scalars map[string]Uncertain) error {
	for name, u := range scalars {
		switch {
		case math.IsNaN(u.Value) || math.IsInf(u.Value, 0):
			return &operation.ArgumentError{Name: name, Reason: fmt.Sprintf("scalar value %v is not finite", u.Value)}
		case math.IsNaN(u.Sigma) || math.IsInf(u.Sigma, 0) || u.Sigma < 0:
			return &operation.ArgumentError{Name: name, Reason: fmt.Sprintf("scalar uncertainty %v must be finite and non-negative", u.Sigma)}
		}
	}
	return nil
}

// failures records the samples dropped under the Exclude policy.
type failures struct {
	mu      sync.Mutex
	byIndex map[int]error
}

func (f *failures) add(index int, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIndex[index] = cause
}

func (f *failures) has(index int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byIndex[index]
	return ok
}

// fail logs a failed sample and applies the failure policy.
func (e *Engine) fail(ctx context.Context, index int, cause error, failed *failures) error {
	logger := ctxlog.Component(ctx, "montecarlo")
	if e.cfg.OnSampleFailure == Abort {
		e.metrics.Sample("failed")
		logger.Error("Monte Carlo sample failed, aborting invocation.", "sample", index, "error", cause)
		return &SampleFailureError{Index: index, Cause: cause}
	}
	e.metrics.Sample("excluded")
	logger.Warn("Monte Carlo sample failed, excluding it from the ensemble.", "sample", index, "error", cause)
	failed.add(index, cause)
	return nil
}

// reduce takes the elementwise sample standard deviation (N-1 denominator) of
// the ensemble, ignoring undefined cells. Shapes were checked per sample.
func (e *Engine) reduce(results []*artifact.Artifact, failed *failures, nt, nl int) (*Result, error) {
	var (
		ensemble []*artifact.Artifact
		excluded []int
	)
	for i, r := range results {
		if r == nil || failed.has(i) {
			excluded = append(excluded, i)
			continue
		}
		ensemble = append(ensemble, r)
	}

	if len(ensemble) < MinSamples {
		return nil, &InsufficientSamplesError{Valid: len(ensemble), Required: MinSamples, Excluded: len(excluded)}
	}

	res := &Result{
		Error:    artifact.NaNGrid(nt, nl),
		Mean:     artifact.NaNGrid(nt, nl),
		Ensemble: len(ensemble),
		Excluded: excluded,
	}
	values := make([]float64, 0, len(ensemble))
	for t := 0; t < nt; t++ {
		for j := 0; j < nl; j++ {
			values = values[:0]
			for _, r := range ensemble {
				if v := r.Data[t][j]; !math.IsNaN(v) {
					values = append(values, v)
				}
			}
			if len(values) < MinSamples {
				continue
			}
			res.Mean[t][j], res.Error[t][j] = stat.MeanStdDev(values, nil)
		}
	}
	return res, nil
}
