package smoothing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(values ...float64) *artifact.Artifact {
	a := artifact.NewFilled(time.Time{}, time.Minute, 1, len(values), 7.5, 0, 1)
	copy(a.Data[0], values)
	return a
}

func runOp(t *testing.T, ctor operation.Constructor, args operation.Args) *artifact.Artifact {
	t.Helper()
	op, err := ctor(args)
	require.NoError(t, err)
	require.NoError(t, op.Init(context.Background()))
	out, err := op.Run(context.Background(), nil)
	require.NoError(t, err)
	return out
}

func TestSlidingAverage(t *testing.T) {
	sig := profile(1, 2, 3, 4, 5)
	out := runOp(t, NewSlidingAverage, operation.Args{ArgSignal: sig, ArgWindow: 3})

	assert.InDeltaSlice(t, []float64{1.5, 2, 3, 4, 4.5}, out.Data[0], 1e-12)
	assert.InDelta(t, math.Sqrt(2)/2, out.Error[0][0], 1e-12)
	assert.InDelta(t, math.Sqrt(3)/3, out.Error[0][2], 1e-12)
	assert.Equal(t, []int{3, 3, 3, 3, 3}, out.BinRes[0])

	// The input is untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, sig.Data[0])
}

func TestSlidingAverage_SkipsUndefinedCells(t *testing.T) {
	sig := profile(1, 2, math.NaN(), 4, 5)
	out := runOp(t, NewSlidingAverage, operation.Args{ArgSignal: sig, ArgWindow: 3})
	assert.InDelta(t, 1.5, out.Data[0][1], 1e-12)
	assert.InDelta(t, 3, out.Data[0][2], 1e-12)

	allNaN := profile(math.NaN(), math.NaN())
	out = runOp(t, NewSlidingAverage, operation.Args{ArgSignal: allNaN, ArgWindow: 1})
	assert.True(t, math.IsNaN(out.Data[0][0]))
	assert.True(t, math.IsNaN(out.Error[0][1]))
}

func TestSlidingAverage_QualityIsCombined(t *testing.T) {
	sig := profile(1, 1, 1, 1)
	sig.Quality[0][3] = artifact.QualitySaturated
	out := runOp(t, NewSlidingAverage, operation.Args{ArgSignal: sig, ArgWindow: 3})
	assert.Equal(t, []uint8{0, 0, artifact.QualitySaturated, artifact.QualitySaturated}, out.Quality[0])
}

func TestCalibration(t *testing.T) {
	sig := profile(2, 4)
	out := runOp(t, NewPassthrough, operation.Args{ArgSignal: sig, ArgCalibration: 2.0})
	assert.Equal(t, []float64{1, 2}, out.Data[0])
	assert.Equal(t, []float64{0.5, 0.5}, out.Error[0])

	out = runOp(t, NewSlidingAverage, operation.Args{ArgSignal: sig, ArgWindow: 1, ArgCalibration: -2.0})
	assert.Equal(t, []float64{-1, -2}, out.Data[0])
	assert.Equal(t, []float64{0.5, 0.5}, out.Error[0])

	_, err := NewPassthrough(operation.Args{ArgSignal: sig, ArgCalibration: 0.0})
	var argErr *operation.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, ArgCalibration, argErr.Name)
}

func TestSlidingAverage_InvalidWindow(t *testing.T) {
	for _, w := range []any{0, 2, -3, 2.5, "three"} {
		_, err := NewSlidingAverage(operation.Args{ArgSignal: profile(1), ArgWindow: w})
		var argErr *operation.ArgumentError
		require.ErrorAs(t, err, &argErr, "window %v", w)
		assert.Equal(t, ArgWindow, argErr.Name)
	}

	// Config files decode numbers as float64.
	_, err := NewSlidingAverage(operation.Args{ArgSignal: profile(1), ArgWindow: 5.0})
	assert.NoError(t, err)
}

func TestLifecycle(t *testing.T) {
	op, err := NewPassthrough(operation.Args{ArgSignal: profile(1)})
	require.NoError(t, err)

	_, err = op.Run(context.Background(), nil)
	var stateErr *operation.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, operation.Constructed, stateErr.Have)

	require.NoError(t, op.Init(context.Background()))
	_, err = op.Run(context.Background(), nil)
	require.NoError(t, err)
	_, err = op.Run(context.Background(), nil)
	assert.True(t, errors.As(err, &stateErr))
}

func TestSubstituteInputs(t *testing.T) {
	op, err := NewPassthrough(operation.Args{ArgSignal: profile(1, 1)})
	require.NoError(t, err)
	require.NoError(t, op.Init(context.Background()))

	out, err := op.Run(context.Background(), operation.Inputs{ArgSignal: profile(7, 8)})
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8}, out.Data[0])
}

func TestSubstituteInputs_MissingSignal(t *testing.T) {
	op, err := NewPassthrough(operation.Args{ArgSignal: profile(1)})
	require.NoError(t, err)
	require.NoError(t, op.Init(context.Background()))
	_, err = op.Run(context.Background(), operation.Inputs{"other": profile(1)})
	assert.ErrorContains(t, err, ArgSignal)
}

func TestOptionalGridsAreAllocated(t *testing.T) {
	sig := &artifact.Artifact{Data: [][]float64{{1, 3}}}
	out := runOp(t, NewSlidingAverage, operation.Args{ArgSignal: sig, ArgWindow: 3})
	assert.Equal(t, []float64{2, 2}, out.Data[0])
	assert.True(t, math.IsNaN(out.Error[0][0]))
	assert.Equal(t, []int{3, 3}, out.BinRes[0])
}

func TestModule_Register(t *testing.T) {
	reg := registry.New[operation.Constructor](nil)
	(&Module{}).Register(reg)
	assert.Equal(t, []string{Passthrough, SlidingAverage}, reg.Variants(Family))
	_, ok := reg.Resolve(Family, SlidingAverage)
	assert.True(t, ok)
}
