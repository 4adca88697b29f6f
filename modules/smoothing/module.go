// Package smoothing provides the 'smoothing' operation family: vertical
// averaging of a signal profile with optional calibration.
package smoothing

import (
	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/registry"
)

const (
	Family = "smoothing"

	SlidingAverage = "sliding_average"
	Passthrough    = "passthrough"
)

// Argument names.
const (
	ArgSignal      = "signal"
	ArgWindow      = "window"
	ArgCalibration = "calibration"
)

// Required lists the arguments every variant of the family needs.
var Required = []string{ArgSignal}

// Module registers the family's variants.
type Module struct{}

// Families returns the family this module provides with its required
// arguments.
func (m *Module) Families() map[string][]string {
	return map[string][]string{Family: Required}
}

// Register binds every variant of the family in r.
func (m *Module) Register(r *registry.Registry[operation.Constructor]) {
	r.MustRegister(Family, SlidingAverage, NewSlidingAverage)
	r.MustRegister(Family, Passthrough, NewPassthrough)
}

// calibration returns the optional calibration constant, 1 when absent.
func calibration(args operation.Args) (float64, error) {
	if _, ok := args[ArgCalibration]; !ok {
		return 1, nil
	}
	c, err := args.Float(ArgCalibration)
	if err != nil {
		return 0, err
	}
	if c == 0 {
		return 0, &operation.ArgumentError{Name: ArgCalibration, Reason: "must be non-zero"}
	}
	return c, nil
}

// input picks the signal from substitute when given, else from own.
func input(own *artifact.Artifact, substitute operation.Inputs) (*artifact.Artifact, error) {
	if substitute == nil {
		return own, nil
	}
	sig, ok := substitute[ArgSignal]
	if !ok || sig == nil {
		return nil, &operation.ArgumentError{Name: ArgSignal, Reason: "missing from substitute inputs"}
	}
	return sig, nil
}

// withGrids returns a copy of sig whose optional arrays are allocated: a
// missing error band is undefined, missing quality is good and missing bin
// resolution is 1.
func withGrids(sig *artifact.Artifact) *artifact.Artifact {
	out := sig.Clone()
	nt, nl := out.Shape()
	filled := artifact.New(nt, nl)
	if out.Error == nil {
		out.Error = filled.Error
	}
	if out.Quality == nil {
		out.Quality = filled.Quality
	}
	if out.BinRes == nil {
		out.BinRes = filled.BinRes
	}
	return out
}
