package montecarlo

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uncertain is a scalar with its absolute standard uncertainty.
type Uncertain struct {
	Value float64
	Sigma float64
}

// Sample is one perturbed invocation.
type Sample struct {
	Index  int
	Inputs operation.Inputs
	// Scalars holds the per-sample draws of the adapter's scalar parameters.
	Scalars map[string]float64
}

// Adapter wraps one production operation with its resolved parameters.
type Adapter interface {
	// Data returns the named inputs whose uncertainty is propagated.
	Data(ctx context.Context) (operation.Inputs, error)
	// Run computes the operation on one sample.
	Run(ctx context.Context, s *Sample) (*artifact.Artifact, error)
}

// ScalarAdapter is an Adapter that also perturbs scalar parameters shared by
// every cell of a sample. Each scalar is redrawn once per sample.
type ScalarAdapter interface {
	Adapter
	Scalars() map[string]Uncertain
}

// ShapedAdapter is an Adapter whose result shape differs from its inputs'.
// Every sample result must have the declared shape.
type ShapedAdapter interface {
	Adapter
	ResultShape() (times, levels int)
}

// drawSamples builds n samples from inputs and scalars. Inputs are perturbed
// name by name in sorted order, then scalars sample by sample, so the result
// depends only on the seed.
func drawSamples(n int, seed uint64, inputs operation.Inputs, scalars map[string]Uncertain) []*Sample {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	samples := make([]*Sample, n)
	for i := range samples {
		samples[i] = &Sample{Index: i, Inputs: make(operation.Inputs, len(inputs))}
	}

	for _, name := range sortedKeys(inputs) {
		for i := 0; i < n; i++ {
			samples[i].Inputs[name] = perturb(inputs[name], unit)
		}
	}

	if len(scalars) > 0 {
		names := make([]string, 0, len(scalars))
		for name := range scalars {
			names = append(names, name)
		}
		sort.Strings(names)
		for i := 0; i < n; i++ {
			samples[i].Scalars = make(map[string]float64, len(scalars))
			for _, name := range names {
				u := scalars[name]
				samples[i].Scalars[name] = drawCell(u.Value, u.Sigma, unit)
			}
		}
	}
	return samples
}

// perturb returns a copy of a whose defined cells are drawn from
// Normal(value, error).
func perturb(a *artifact.Artifact, unit distuv.Normal) *artifact.Artifact {
	out := a.Clone()
	for t, row := range a.Data {
		for j, v := range row {
			sigma := math.NaN()
			if t < len(a.Error) && j < len(a.Error[t]) {
				sigma = a.Error[t][j]
			}
			out.Data[t][j] = drawCell(v, sigma, unit)
		}
	}
	return out
}

// drawCell draws one value. An undefined value or uncertainty yields NaN; a
// zero uncertainty keeps the value.
func drawCell(value, sigma float64, unit distuv.Normal) float64 {
	if math.IsNaN(value) || math.IsNaN(sigma) || sigma < 0 {
		return math.NaN()
	}
	if sigma == 0 {
		return value
	}
	return value + sigma*unit.Rand()
}

func sortedKeys(in operation.Inputs) []string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
