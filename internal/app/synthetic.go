package app

import (
	"time"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/config"
	"github.com/specialistvlad/lidarcore/internal/datastore"
)

// seedSynthetic fills store with a generated measurement: one flat ELPP
// signal per channel, optional lidar constants, a header and a cloud mask
// flagging every level from CloudBase up.
func seedSynthetic(store *datastore.Store, s config.Synthetic, start time.Time) error {
	step := time.Minute
	header := artifact.Header{
		MeasurementID: s.MeasurementID,
		StationID:     s.Station,
		Start:         start,
		Stop:          start.Add(time.Duration(s.Times) * step),
	}
	if err := store.SetHeader(header); err != nil {
		return err
	}

	for _, ch := range s.Channels {
		sig := artifact.NewFilled(start, step, s.Times, s.Levels, s.BinWidth, s.Value, s.Sigma)
		sig.Meta.Channel = ch
		sig.Meta.Unit = "a.u."
		store.SetELPPSignal(s.Product, sig)

		if s.Calibration > 0 {
			store.SetLidarConstant(s.Product, &artifact.LidarConstant{
				Channel: ch,
				Value:   s.Calibration,
				Error:   s.CalibrationError,
			})
		}
	}

	mask := &artifact.CloudMask{
		Times:  make([]time.Time, s.Times),
		Levels: make([]float64, s.Levels),
		Flags:  make([][]uint8, s.Times),
	}
	for j := range mask.Levels {
		mask.Levels[j] = float64(j) * s.BinWidth
	}
	for t := range mask.Flags {
		mask.Times[t] = start.Add(time.Duration(t) * step)
		mask.Flags[t] = make([]uint8, s.Levels)
		if s.CloudBase < 0 {
			continue
		}
		for j := s.CloudBase; j < s.Levels; j++ {
			mask.Flags[t][j] = artifact.Cloud
		}
	}
	return store.SetCloudMask(mask)
}
