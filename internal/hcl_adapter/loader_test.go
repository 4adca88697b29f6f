package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/specialistvlad/lidarcore/internal/config"
	"github.com/specialistvlad/lidarcore/internal/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestLoad_FullRunFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"run.hcl": `
metrics_port = 9100
variants_db  = "variants.sqlite"

log {
  level  = "debug"
  format = "json"
}

montecarlo {
  iterations        = 250
  workers           = 4
  seed              = 42
  on_sample_failure = "exclude"
}

stage "smoothing" {
  variant = "passthrough"
  arguments = {
    window = 7
    note   = "wide"
    tags   = ["a", "b"]
  }
}

synthetic {
  product  = "325"
  channels = ["355", "532"]
  levels   = 40
  sigma    = 0.5
}
`})

	m, err := NewLoader().Load(context.Background(), config.Defaults(), dir)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, 9100, m.MetricsPort)
	assert.Equal(t, "variants.sqlite", m.VariantsDB)
	assert.Equal(t, config.Log{Level: "debug", Format: "json"}, m.Log)
	assert.Equal(t, config.MonteCarlo{Enabled: true, Iterations: 250, Workers: 4, Seed: 42, OnSampleFailure: "exclude"}, m.MonteCarlo)
	assert.Equal(t, variant.Static{"smoothing": "passthrough"}, m.Variants())
	assert.Equal(t, map[string]any{
		"window": 7.0,
		"note":   "wide",
		"tags":   []any{"a", "b"},
	}, m.StageArguments("smoothing"))

	assert.Equal(t, "325", m.Synthetic.Product)
	assert.Equal(t, []string{"355", "532"}, m.Synthetic.Channels)
	assert.Equal(t, 40, m.Synthetic.Levels)
	assert.Equal(t, 0.5, m.Synthetic.Sigma)
	assert.Equal(t, config.Defaults().Synthetic.Times, m.Synthetic.Times, "unset attributes keep the base value")
}

func TestLoad_MonteCarloCanBeDisabled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"run.hcl": `
montecarlo {
  enabled = false
  workers = 2
}
`})
	m, err := NewLoader().Load(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.False(t, m.MonteCarlo.Enabled)
	assert.Equal(t, 2, m.MonteCarlo.Workers)
}

func TestLoad_StageWithoutArguments(t *testing.T) {
	dir := writeFiles(t, map[string]string{"run.hcl": `
stage "extinction" {
  variant = "raman"
}
`})
	m, err := NewLoader().Load(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Nil(t, m.StageArguments("extinction"))
	assert.Equal(t, []string{"extinction", "smoothing"}, m.Families())
}

func TestLoad_MergesFilesAndRejectsDuplicateStages(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a/log.hcl":    `log { level = "warn" }`,
		"b/stages.hcl": `stage "smoothing" { variant = "passthrough" }`,
		"ignored.txt":  `not hcl`,
	})
	m, err := NewLoader().Load(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", m.Log.Level)
	assert.Equal(t, "passthrough", m.Variants()["smoothing"])

	dup := writeFiles(t, map[string]string{
		"a.hcl": `stage "smoothing" { variant = "passthrough" }`,
		"b.hcl": `stage "smoothing" { variant = "sliding_average" }`,
	})
	_, err = NewLoader().Load(context.Background(), nil, dup)
	assert.ErrorContains(t, err, "already declared")
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":            `log {`,
		"unknown attribute": `log_level = "debug"`,
		"missing variant":   `stage "smoothing" {}`,
		"arguments type": `
stage "smoothing" {
  variant   = "x"
  arguments = 3
}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"run.hcl": content})
			_, err := NewLoader().Load(context.Background(), nil, dir)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingPathIsSkipped(t *testing.T) {
	m, err := NewLoader().Load(context.Background(), nil, filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), m)
}

func TestCtyToNative(t *testing.T) {
	v, err := ctyToNative(cty.ObjectVal(map[string]cty.Value{
		"n":    cty.NumberIntVal(3),
		"b":    cty.True,
		"null": cty.NullVal(cty.String),
		"set":  cty.SetVal([]cty.Value{cty.StringVal("x")}),
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 3.0, "b": true, "null": nil, "set": []any{"x"}}, v)

	_, err = ctyToNative(cty.CapsuleVal(cty.Capsule("thing", reflect.TypeOf(0)), new(int)))
	assert.Error(t, err)
}
