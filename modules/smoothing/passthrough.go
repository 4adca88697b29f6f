package smoothing

import (
	"context"
	"math"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/operation"
)

// passthrough only applies the calibration.
type passthrough struct {
	operation.Lifecycle
	signal      *artifact.Artifact
	calibration float64
}

// NewPassthrough builds the passthrough variant.
func NewPassthrough(args operation.Args) (operation.Operation, error) {
	sig, err := args.Artifact(ArgSignal)
	if err != nil {
		return nil, err
	}
	c, err := calibration(args)
	if err != nil {
		return nil, err
	}
	return &passthrough{signal: sig, calibration: c}, nil
}

func (p *passthrough) Init(context.Context) error {
	if err := p.MarkInitialized(); err != nil {
		return err
	}
	return p.signal.Validate()
}

func (p *passthrough) Run(_ context.Context, substitute operation.Inputs) (*artifact.Artifact, error) {
	if err := p.BeginRun(); err != nil {
		return nil, err
	}
	sig, err := input(p.signal, substitute)
	if err != nil {
		return nil, err
	}
	out := withGrids(sig)
	for t, row := range out.Data {
		for j := range row {
			row[j] /= p.calibration
			out.Error[t][j] /= math.Abs(p.calibration)
		}
	}
	return out, nil
}
