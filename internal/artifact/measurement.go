package artifact

import (
	"time"
)

// Cloud mask flags. Flags combine with bitwise OR.
const (
	CloudFree    uint8 = 0
	Cloud        uint8 = 1 << 0
	Fog          uint8 = 1 << 1
	CloudUnknown uint8 = 1 << 2
)

// CloudMask flags contaminated cells over (time, level).
type CloudMask struct {
	Times  []time.Time
	Levels []float64
	Flags  [][]uint8
}

// Clone returns a deep copy of m.
func (m *CloudMask) Clone() *CloudMask {
	if m == nil {
		return nil
	}
	return &CloudMask{
		Times:  append([]time.Time(nil), m.Times...),
		Levels: append([]float64(nil), m.Levels...),
		Flags:  CloneUint8Grid(m.Flags),
	}
}

// Equal reports whether m and o describe the same mask.
func (m *CloudMask) Equal(o *CloudMask) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.Times) != len(o.Times) || len(m.Levels) != len(o.Levels) || len(m.Flags) != len(o.Flags) {
		return false
	}
	for i := range m.Times {
		if !m.Times[i].Equal(o.Times[i]) {
			return false
		}
	}
	for i := range m.Levels {
		if m.Levels[i] != o.Levels[i] {
			return false
		}
	}
	for t := range m.Flags {
		if len(m.Flags[t]) != len(o.Flags[t]) {
			return false
		}
		for j := range m.Flags[t] {
			if m.Flags[t][j] != o.Flags[t][j] {
				return false
			}
		}
	}
	return true
}

// Header identifies one measurement.
type Header struct {
	MeasurementID string
	StationID     string
	Start         time.Time
	Stop          time.Time
	Latitude      float64
	Longitude     float64
	Altitude      float64
}

// Equal reports whether h and o describe the same measurement.
func (h Header) Equal(o Header) bool {
	return h.MeasurementID == o.MeasurementID &&
		h.StationID == o.StationID &&
		h.Start.Equal(o.Start) &&
		h.Stop.Equal(o.Stop) &&
		h.Latitude == o.Latitude &&
		h.Longitude == o.Longitude &&
		h.Altitude == o.Altitude
}

// LidarConstant is the calibration constant of one channel.
type LidarConstant struct {
	Channel    string
	Wavelength float64
	Value      float64
	Error      float64
	// Product is the id of the product the constant was derived from.
	Product string
}

// Clone returns a copy of c.
func (c *LidarConstant) Clone() *LidarConstant {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
