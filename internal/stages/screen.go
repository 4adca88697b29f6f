package stages

import (
	"context"
	"fmt"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/pipeline"
)

// CloudScreen flags every basic product of a resolution class with the common
// cloud mask of that class and stores the screened copy as a product matrix.
type CloudScreen struct {
	Resolution artifact.Resolution
}

func (s *CloudScreen) Name() string { return "cloud_screen_" + s.Resolution.String() }

func (s *CloudScreen) Run(ctx context.Context, env *pipeline.Env) error {
	mask, err := env.Store.CommonCloudMask(s.Resolution)
	if err != nil {
		return err
	}

	var screened int
	for _, k := range env.Store.Keys() {
		if k.Compartment != datastore.BasicProducts || k.Resolution != s.Resolution {
			continue
		}
		a, err := env.Store.BasicProduct(k.Product, s.Resolution)
		if err != nil {
			return err
		}
		if len(a.Quality) != len(mask.Flags) {
			return fmt.Errorf("screen '%s': %w", k.Product, artifact.ErrShapeMismatch)
		}
		for t, row := range mask.Flags {
			if len(row) != len(a.Quality[t]) {
				return fmt.Errorf("screen '%s' at time %d: %w", k.Product, t, artifact.ErrShapeMismatch)
			}
			for j, flag := range row {
				if flag != artifact.CloudFree {
					a.Quality[t][j] |= artifact.QualityCloud
				}
			}
		}
		env.Store.SetProductMatrix(k.Product, s.Resolution, a)
		screened++
	}
	ctxlog.FromContext(ctx).Info("Products screened for clouds.", "resolution", s.Resolution, "products", screened)
	return nil
}
