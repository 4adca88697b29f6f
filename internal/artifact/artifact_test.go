package artifact

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsIndependent(t *testing.T) {
	a := NewFilled(time.Unix(0, 0).UTC(), time.Minute, 3, 4, 7.5, 10, 1)
	a.Meta = Meta{Product: "324", Channel: "A", Attrs: map[string]string{"k": "v"}}

	c := a.Clone()
	require.Empty(t, cmp.Diff(a, c, cmpopts.EquateNaNs()))

	c.Data[0][0] = 99
	c.Error[1][1] = 99
	c.Quality[2][2] = QualityInvalid
	c.BinRes[0][3] = 9
	c.Levels[0] = 99
	c.Meta.Attrs["k"] = "changed"

	assert.Equal(t, 10.0, a.Data[0][0])
	assert.Equal(t, 1.0, a.Error[1][1])
	assert.Equal(t, QualityGood, a.Quality[2][2])
	assert.Equal(t, 1, a.BinRes[0][3])
	assert.Equal(t, 0.0, a.Levels[0])
	assert.Equal(t, "v", a.Meta.Attrs["k"])
}

func TestNew_CellsStartUndefined(t *testing.T) {
	a := New(2, 3)
	nt, nl := a.Shape()
	assert.Equal(t, 2, nt)
	assert.Equal(t, 3, nl)
	assert.False(t, a.Defined(1, 2))
	assert.True(t, math.IsNaN(a.Error[0][0]))
	assert.Equal(t, 1, a.BinRes[1][2])
}

func TestValidate(t *testing.T) {
	a := New(2, 3)
	require.NoError(t, a.Validate())

	a.Error[1] = a.Error[1][:2]
	err := a.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var nilArtifact *Artifact
	assert.Error(t, nilArtifact.Validate())
	assert.Error(t, (&Artifact{}).Validate())
}

func TestParseResolution(t *testing.T) {
	r, err := ParseResolution("LOW")
	require.NoError(t, err)
	assert.Equal(t, Low, r)
	r, err = ParseResolution("high")
	require.NoError(t, err)
	assert.Equal(t, High, r)
	_, err = ParseResolution("medium")
	assert.Error(t, err)
	assert.Equal(t, "none", NoResolution.String())
}

func TestCloudMask_CloneAndEqual(t *testing.T) {
	m := &CloudMask{
		Times:  []time.Time{time.Unix(0, 0)},
		Levels: []float64{0, 7.5},
		Flags:  [][]uint8{{CloudFree, Cloud}},
	}
	c := m.Clone()
	assert.True(t, m.Equal(c))
	c.Flags[0][0] = Fog
	assert.False(t, m.Equal(c))
	assert.Equal(t, CloudFree, m.Flags[0][0])
}

func TestHeader_Equal(t *testing.T) {
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	h := Header{MeasurementID: "20240501po00", StationID: "po", Start: start, Stop: start.Add(time.Hour)}
	o := h
	o.Start = start.In(time.FixedZone("x", 3600))
	assert.True(t, h.Equal(o))
	o.StationID = "hh"
	assert.False(t, h.Equal(o))
}
