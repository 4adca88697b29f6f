package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/lidarcore/internal/app"
	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/hcl_adapter"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/pipeline"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/specialistvlad/lidarcore/internal/testutil"
	"github.com/specialistvlad/lidarcore/internal/variant"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DryRun(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
synthetic {
  product    = "325"
  channels   = ["355", "532"]
  times      = 2
  levels     = 20
  cloud_base = 15
}
`})
	require.NoError(t, result.Err)
	require.True(t, result.Report.Status.OK())
	assert.NotEmpty(t, result.Report.Status.RunID)

	var paths []string
	for _, k := range result.Report.Keys {
		paths = append(paths, k.String())
	}
	assert.Contains(t, paths, "prepared_signals/325/355")
	assert.Contains(t, paths, "basic_products/325_532/low")
	assert.Contains(t, paths, "product_matrices/325_532/high")
	assert.Contains(t, paths, "cloud_mask")
	assert.Contains(t, paths, "header")
	assert.Contains(t, result.LogOutput, "stage=prepare_signals")
}

func TestRun_MonteCarloWithCalibration(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
montecarlo {
  iterations = 50
  workers    = 2
}

synthetic {
  times             = 1
  levels            = 10
  calibration       = 2
  calibration_error = 0.1
}
`})
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Error band propagated.")
}

func TestRun_UnresolvedVariant(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
stage "smoothing" {
  variant = "savitzky_golay"
}
`})
	require.Error(t, result.Err)
	assert.Equal(t, pipeline.KindUnresolvedVariant, result.Report.Status.Kind)
	assert.Equal(t, "prepare_signals", result.Report.Status.Stage)
}

func TestRun_InvalidStageArguments(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
stage "smoothing" {
  variant   = "sliding_average"
  arguments = { calibration = 0 }
}
`})
	require.Error(t, result.Err)
	assert.Equal(t, pipeline.KindInvalidArguments, result.Report.Status.Kind)
	var argErr *operation.ArgumentError
	assert.ErrorAs(t, result.Err, &argErr)
}

func TestNewApp_InvalidConfiguration(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
montecarlo {
  on_sample_failure = "retry"
}
`})
	require.Error(t, result.Err)
	assert.Nil(t, result.App)
	assert.Contains(t, result.Err.Error(), "OnSampleFailure")
}

// overrideModule forces a variant onto the smoothing family.
type overrideModule struct{}

func (overrideModule) Families() map[string][]string {
	return map[string][]string{smoothing.Family: smoothing.Required}
}

func (overrideModule) Register(r *registry.Registry[operation.Constructor]) {
	(&smoothing.Module{}).Register(r)
	r.MustRegister(smoothing.Family, "forced", smoothing.NewPassthrough, registry.AsOverride())
}

func TestVariants(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"run.hcl": `
stage "extinction" {
  variant = "raman"
}
`})
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "variants.sqlite")
	db, err := variant.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "backscatter", "klett"))
	require.NoError(t, db.Close())

	cfg := &app.Config{RunPaths: []string{dir}, VariantsDB: dbPath}
	a, err := app.NewApp(ctx, &testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader(), overrideModule{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	got := make(map[string]app.Resolution)
	for _, r := range a.Variants(ctx) {
		got[r.Family] = r
	}
	assert.Equal(t, "forced", got[smoothing.Family].Variant)
	assert.True(t, got[smoothing.Family].Bound)
	assert.Equal(t, "raman", got["extinction"].Variant)
	assert.False(t, got["extinction"].Bound)
	_, ok := got["backscatter"]
	assert.False(t, ok, "database-only families are not listed")
}

func TestRun_FillsBothCompartmentsAtLowResolution(t *testing.T) {
	result := testutil.RunApp(t, map[string]string{"run.hcl": `
synthetic {
  times      = 1
  levels     = 12
  cloud_base = 10
}
`})
	require.NoError(t, result.Err)

	var basic, matrix bool
	for _, k := range result.Report.Keys {
		if k.Resolution != artifact.Low {
			continue
		}
		basic = basic || k.Compartment == datastore.BasicProducts
		matrix = matrix || k.Compartment == datastore.ProductMatrices
	}
	assert.True(t, basic)
	assert.True(t, matrix)
}
