package smoothing

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/operation"
)

// slidingAverage averages each level with its neighbours over an odd window.
// Undefined cells are skipped; a window with no defined cell stays undefined.
// Bin resolution grows by window-1, the support of two stacked boxcars.
type slidingAverage struct {
	operation.Lifecycle
	signal      *artifact.Artifact
	window      int
	calibration float64
}

// NewSlidingAverage builds the sliding_average variant. It needs 'window', an
// odd positive integer.
func NewSlidingAverage(args operation.Args) (operation.Operation, error) {
	sig, err := args.Artifact(ArgSignal)
	if err != nil {
		return nil, err
	}
	w, err := args.Int(ArgWindow)
	if err != nil {
		return nil, err
	}
	if w < 1 || w%2 == 0 {
		return nil, &operation.ArgumentError{Name: ArgWindow, Reason: fmt.Sprintf("must be an odd positive integer, got %d", w)}
	}
	c, err := calibration(args)
	if err != nil {
		return nil, err
	}
	return &slidingAverage{signal: sig, window: w, calibration: c}, nil
}

func (s *slidingAverage) Init(ctx context.Context) error {
	if err := s.MarkInitialized(); err != nil {
		return err
	}
	return s.signal.Validate()
}

func (s *slidingAverage) Run(ctx context.Context, substitute operation.Inputs) (*artifact.Artifact, error) {
	if err := s.BeginRun(); err != nil {
		return nil, err
	}
	sig, err := input(s.signal, substitute)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Applying sliding average.", "window", s.window, "channel", sig.Meta.Channel)

	sig = withGrids(sig)
	out := sig.Clone()
	half := s.window / 2
	scale := math.Abs(s.calibration)
	for t, row := range sig.Data {
		nl := len(row)
		for j := 0; j < nl; j++ {
			lo, hi := max(j-half, 0), min(j+half, nl-1)
			var (
				sum, variance float64
				n             int
				quality       uint8
			)
			for k := lo; k <= hi; k++ {
				quality |= sig.Quality[t][k]
				if math.IsNaN(row[k]) {
					continue
				}
				sum += row[k]
				variance += sig.Error[t][k] * sig.Error[t][k]
				n++
			}
			out.Quality[t][j] = quality
			out.BinRes[t][j] = sig.BinRes[t][j] + s.window - 1
			if n == 0 {
				out.Data[t][j] = math.NaN()
				out.Error[t][j] = math.NaN()
				continue
			}
			out.Data[t][j] = sum / float64(n) / s.calibration
			out.Error[t][j] = math.Sqrt(variance) / float64(n) / scale
		}
	}
	return out, nil
}
