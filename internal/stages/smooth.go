package stages

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/pipeline"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
)

// smooth runs the smoothing family on sig and, when the environment carries a
// Monte Carlo engine, replaces the analytic error band with the propagated one.
// extra carries configured arguments; signal and window always win over it.
func smooth(ctx context.Context, env *pipeline.Env, sig *artifact.Artifact, window int, constant *artifact.LidarConstant, extra operation.Args) (*artifact.Artifact, error) {
	factory, err := env.Factory(smoothing.Family)
	if err != nil {
		return nil, err
	}

	args := extra.With(operation.Args{smoothing.ArgSignal: sig, smoothing.ArgWindow: window})
	if constant != nil {
		args[smoothing.ArgCalibration] = constant.Value
	}

	op, err := factory.New(ctx, args)
	if err != nil {
		return nil, err
	}
	out, err := op.Run(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: run: %w", smoothing.Family, err)
	}

	if env.MonteCarlo == nil {
		return out, nil
	}
	res, err := env.MonteCarlo.Propagate(ctx, &SmoothingAdapter{Factory: factory, Args: args, Constant: constant})
	if err != nil {
		return nil, fmt.Errorf("propagate %s error: %w", smoothing.Family, err)
	}
	if nt, nl := out.Shape(); len(res.Error) != nt || (nt > 0 && len(res.Error[0]) != nl) {
		return nil, fmt.Errorf("propagated error band: %w", artifact.ErrShapeMismatch)
	}
	out.Error = res.Error
	ctxlog.FromContext(ctx).Debug("Error band propagated.", "ensemble", res.Ensemble, "excluded", len(res.Excluded))
	return out, nil
}

// PrepareSignals smooths every ELPP signal of Product, calibrating each channel
// with its lidar constant when one is stored, and stores the result as
// prepared signals.
type PrepareSignals struct {
	Product   string
	Window    int
	Arguments operation.Args
}

func (s *PrepareSignals) Name() string { return "prepare_signals" }

func (s *PrepareSignals) Run(ctx context.Context, env *pipeline.Env) error {
	logger := ctxlog.FromContext(ctx)

	signals, err := env.Store.ELPPSignals(s.Product)
	if err != nil {
		return err
	}
	for _, sig := range signals {
		channel := sig.Meta.Channel
		constant, err := datastore.Fallback(
			func() (*artifact.LidarConstant, error) { return env.Store.LidarConstant(s.Product, channel) },
			func() (*artifact.LidarConstant, error) { return nil, nil },
		)
		if err != nil {
			return err
		}
		if err := checkConstant(constant); err != nil {
			return fmt.Errorf("channel '%s': %w", channel, err)
		}

		out, err := smooth(ctx, env, sig, s.Window, constant, s.Arguments)
		if err != nil {
			return fmt.Errorf("channel '%s': %w", channel, err)
		}
		out.Meta.Channel = channel
		env.Store.SetPreparedSignal(s.Product, out)
		logger.Debug("Signal prepared.", "product", s.Product, "channel", channel, "calibrated", constant != nil)
	}
	logger.Info("Signals prepared.", "product", s.Product, "channels", len(signals))
	return nil
}

// checkConstant rejects a lidar constant that cannot calibrate a signal or be
// redrawn by the Monte Carlo engine. A nil constant is accepted.
func checkConstant(c *artifact.LidarConstant) error {
	if c == nil {
		return nil
	}
	switch {
	case math.IsNaN(c.Value) || math.IsInf(c.Value, 0) || c.Value == 0:
		return &operation.ArgumentError{Name: smoothing.ArgCalibration, Reason: fmt.Sprintf("lidar constant %v is not a usable divisor", c.Value)}
	case math.IsNaN(c.Error) || math.IsInf(c.Error, 0) || c.Error < 0:
		return &operation.ArgumentError{Name: smoothing.ArgCalibration, Reason: fmt.Sprintf("lidar constant uncertainty %v must be finite and non-negative", c.Error)}
	}
	return nil
}

// CommonSmoothing smooths one prepared channel to the common window of a
// resolution class and stores it as a basic product.
type CommonSmoothing struct {
	Source     string
	Channel    string
	Product    string
	Resolution artifact.Resolution
	Window     int
	Arguments  operation.Args
}

func (s *CommonSmoothing) Name() string {
	return "common_smoothing_" + s.Product + "_" + s.Resolution.String()
}

func (s *CommonSmoothing) Run(ctx context.Context, env *pipeline.Env) error {
	sig, err := env.Store.PreparedSignal(s.Source, s.Channel)
	if err != nil {
		return err
	}
	out, err := smooth(ctx, env, sig, s.Window, nil, s.Arguments)
	if err != nil {
		return fmt.Errorf("product '%s': %w", s.Product, err)
	}
	env.Store.SetBasicProduct(s.Product, s.Resolution, out)
	ctxlog.FromContext(ctx).Info("Basic product smoothed.", "product", s.Product, "resolution", s.Resolution, "window", s.Window)
	return nil
}
