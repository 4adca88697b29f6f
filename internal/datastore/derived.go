package datastore

import (
	"fmt"

	"github.com/specialistvlad/lidarcore/internal/artifact"
)

// MaxBinRes returns the elementwise maximum of the bin resolution profiles of
// every basic and derived product stored at res.
func (s *Store) MaxBinRes(res artifact.Resolution) ([][]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxBinRes(res)
}

func (s *Store) maxBinRes(res artifact.Resolution) ([][]int, error) {
	var (
		max    [][]int
		source string
		err    error
	)
	fold := func(product, sub string, a *artifact.Artifact) {
		if err != nil || sub != res.String() || a.BinRes == nil {
			return
		}
		if max == nil {
			max = artifact.CloneIntGrid(a.BinRes)
			source = product
			return
		}
		if len(a.BinRes) != len(max) {
			err = fmt.Errorf("bin resolution of '%s' vs '%s': %w", product, source, artifact.ErrShapeMismatch)
			return
		}
		for t, row := range a.BinRes {
			if len(row) != len(max[t]) {
				err = fmt.Errorf("bin resolution of '%s' vs '%s' at time %d: %w", product, source, t, artifact.ErrShapeMismatch)
				return
			}
			for j, w := range row {
				if w > max[t][j] {
					max[t][j] = w
				}
			}
		}
	}
	s.basic.each(fold)
	s.derived.each(fold)

	if err != nil {
		return nil, err
	}
	if max == nil {
		return nil, &NotFoundError{
			What:  "bin resolution profiles",
			Where: fmt.Sprintf("%s|%s/*/%s", BasicProducts, DerivedProducts, res),
		}
	}
	return max, nil
}

// CommonCloudMask folds the cloud mask over the averaging window of res.
// Level j at time t is flagged with the bitwise OR of every mask cell in
// [j-w/2, j+w/2], w being MaxBinRes(res) at that cell, so that every product
// of the resolution class is disqualified by contamination anywhere in its
// effective window.
func (s *Store) CommonCloudMask(res artifact.Resolution) (*artifact.CloudMask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cloudMask == nil {
		return nil, &NotFoundError{What: "cloud mask", Where: string(CloudMaskSlot)}
	}
	binres, err := s.maxBinRes(res)
	if err != nil {
		return nil, err
	}

	mask := s.cloudMask
	if len(mask.Flags) != len(binres) {
		return nil, fmt.Errorf("cloud mask has %d time steps, bin resolution %d: %w", len(mask.Flags), len(binres), artifact.ErrShapeMismatch)
	}

	out := mask.Clone()
	for t, row := range mask.Flags {
		nl := len(row)
		if len(binres[t]) != nl {
			return nil, fmt.Errorf("cloud mask has %d levels at time %d, bin resolution %d: %w", nl, t, len(binres[t]), artifact.ErrShapeMismatch)
		}
		for j := 0; j < nl; j++ {
			half := binres[t][j] / 2
			lo, hi := j-half, j+half
			if lo < 0 {
				lo = 0
			}
			if hi > nl-1 {
				hi = nl - 1
			}
			var flag uint8
			for k := lo; k <= hi; k++ {
				flag |= row[k]
			}
			out.Flags[t][j] = flag
		}
	}
	return out, nil
}
