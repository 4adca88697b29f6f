package artifact

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Quality flags. A zero value marks a good cell.
const (
	QualityGood      uint8 = 0
	QualityInvalid   uint8 = 1 << 0
	QualitySaturated uint8 = 1 << 1
	QualityLowSNR    uint8 = 1 << 2
	QualityCloud     uint8 = 1 << 3
)

// ErrShapeMismatch is returned when two arrays that must share a shape do not.
var ErrShapeMismatch = errors.New("shape mismatch")

// Meta describes where an artifact came from.
type Meta struct {
	Product    string
	Channel    string
	Resolution Resolution
	Unit       string
	Attrs      map[string]string
}

// Clone returns a deep copy of m.
func (m Meta) Clone() Meta {
	out := m
	if m.Attrs != nil {
		out.Attrs = make(map[string]string, len(m.Attrs))
		for k, v := range m.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// Artifact is a numeric product over (time, level). Undefined cells hold NaN
// in Data.
type Artifact struct {
	Times   []time.Time
	Levels  []float64
	Data    [][]float64
	Error   [][]float64
	Quality [][]uint8
	BinRes  [][]int
	Meta    Meta
}

// New allocates an artifact of the given shape with every data and error cell
// undefined, every quality cell good and every bin resolution set to 1.
func New(times int, levels int) *Artifact {
	a := &Artifact{
		Times:   make([]time.Time, times),
		Levels:  make([]float64, levels),
		Data:    NaNGrid(times, levels),
		Error:   NaNGrid(times, levels),
		Quality: make([][]uint8, times),
		BinRes:  make([][]int, times),
	}
	for t := 0; t < times; t++ {
		a.Quality[t] = make([]uint8, levels)
		a.BinRes[t] = make([]int, levels)
		for j := range a.BinRes[t] {
			a.BinRes[t][j] = 1
		}
	}
	return a
}

// NewFilled builds an artifact whose every cell carries value with absolute
// error sigma. Times start at start and advance by step; levels are spaced by
// binWidth metres.
func NewFilled(start time.Time, step time.Duration, times int, levels int, binWidth float64, value float64, sigma float64) *Artifact {
	a := New(times, levels)
	for t := 0; t < times; t++ {
		a.Times[t] = start.Add(time.Duration(t) * step)
		for j := 0; j < levels; j++ {
			a.Data[t][j] = value
			a.Error[t][j] = sigma
		}
	}
	for j := 0; j < levels; j++ {
		a.Levels[j] = float64(j) * binWidth
	}
	return a
}

// NaNGrid allocates a times x levels grid filled with NaN.
func NaNGrid(times int, levels int) [][]float64 {
	g := make([][]float64, times)
	for t := range g {
		g[t] = make([]float64, levels)
		for j := range g[t] {
			g[t][j] = math.NaN()
		}
	}
	return g
}

// Shape returns the number of time steps and levels of the data array.
func (a *Artifact) Shape() (int, int) {
	if len(a.Data) == 0 {
		return 0, 0
	}
	return len(a.Data), len(a.Data[0])
}

// Defined reports whether the cell at (t, j) holds a value.
func (a *Artifact) Defined(t int, j int) bool {
	return !math.IsNaN(a.Data[t][j])
}

// Validate checks that every populated array is rectangular and matches the
// shape of Data.
func (a *Artifact) Validate() error {
	if a == nil {
		return errors.New("artifact is nil")
	}
	nt, nl := a.Shape()
	if nt == 0 || nl == 0 {
		return errors.New("artifact has no data")
	}
	if err := checkFloatGrid("data", a.Data, nt, nl); err != nil {
		return err
	}
	if a.Error != nil {
		if err := checkFloatGrid("error", a.Error, nt, nl); err != nil {
			return err
		}
	}
	if a.Quality != nil {
		if len(a.Quality) != nt {
			return fmt.Errorf("quality: %w: %d time steps, want %d", ErrShapeMismatch, len(a.Quality), nt)
		}
		for t, row := range a.Quality {
			if len(row) != nl {
				return fmt.Errorf("quality[%d]: %w: %d levels, want %d", t, ErrShapeMismatch, len(row), nl)
			}
		}
	}
	if a.BinRes != nil {
		if len(a.BinRes) != nt {
			return fmt.Errorf("binres: %w: %d time steps, want %d", ErrShapeMismatch, len(a.BinRes), nt)
		}
		for t, row := range a.BinRes {
			if len(row) != nl {
				return fmt.Errorf("binres[%d]: %w: %d levels, want %d", t, ErrShapeMismatch, len(row), nl)
			}
		}
	}
	return nil
}

func checkFloatGrid(name string, g [][]float64, nt int, nl int) error {
	if len(g) != nt {
		return fmt.Errorf("%s: %w: %d time steps, want %d", name, ErrShapeMismatch, len(g), nt)
	}
	for t, row := range g {
		if len(row) != nl {
			return fmt.Errorf("%s[%d]: %w: %d levels, want %d", name, t, ErrShapeMismatch, len(row), nl)
		}
	}
	return nil
}

// Clone returns a deep copy of a. Mutating the copy never affects a.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	return &Artifact{
		Times:   append([]time.Time(nil), a.Times...),
		Levels:  append([]float64(nil), a.Levels...),
		Data:    CloneFloatGrid(a.Data),
		Error:   CloneFloatGrid(a.Error),
		Quality: CloneUint8Grid(a.Quality),
		BinRes:  CloneIntGrid(a.BinRes),
		Meta:    a.Meta.Clone(),
	}
}

// CloneFloatGrid deep-copies a 2D float grid.
func CloneFloatGrid(g [][]float64) [][]float64 {
	if g == nil {
		return nil
	}
	out := make([][]float64, len(g))
	for i, row := range g {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// CloneUint8Grid deep-copies a 2D uint8 grid.
func CloneUint8Grid(g [][]uint8) [][]uint8 {
	if g == nil {
		return nil
	}
	out := make([][]uint8, len(g))
	for i, row := range g {
		out[i] = append([]uint8(nil), row...)
	}
	return out
}

// CloneIntGrid deep-copies a 2D int grid.
func CloneIntGrid(g [][]int) [][]int {
	if g == nil {
		return nil
	}
	out := make([][]int, len(g))
	for i, row := range g {
		out[i] = append([]int(nil), row...)
	}
	return out
}
