// Package stages holds the pipeline stages that drive the smoothing family
// through the data store and the Monte Carlo engine.
package stages

import (
	"context"
	"fmt"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/montecarlo"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
)

// SmoothingAdapter re-invokes a smoothing operation on Monte Carlo samples.
// Every sample builds a fresh operation because operations are single use.
type SmoothingAdapter struct {
	Factory *operation.Factory
	Args    operation.Args
	// Constant, when set, is redrawn per sample and used as calibration.
	Constant *artifact.LidarConstant
}

var _ montecarlo.ScalarAdapter = (*SmoothingAdapter)(nil)

func (a *SmoothingAdapter) Data(context.Context) (operation.Inputs, error) {
	sig, err := a.Args.Artifact(smoothing.ArgSignal)
	if err != nil {
		return nil, err
	}
	return operation.Inputs{smoothing.ArgSignal: sig}, nil
}

func (a *SmoothingAdapter) Scalars() map[string]montecarlo.Uncertain {
	if a.Constant == nil {
		return nil
	}
	return map[string]montecarlo.Uncertain{
		smoothing.ArgCalibration: {Value: a.Constant.Value, Sigma: a.Constant.Error},
	}
}

func (a *SmoothingAdapter) Run(ctx context.Context, s *montecarlo.Sample) (*artifact.Artifact, error) {
	args := a.Args.With(operation.Args{smoothing.ArgSignal: s.Inputs[smoothing.ArgSignal]})
	if c, ok := s.Scalars[smoothing.ArgCalibration]; ok {
		args[smoothing.ArgCalibration] = c
	}
	op, err := a.Factory.New(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("sample %d: %w", s.Index, err)
	}
	return op.Run(ctx, nil)
}
