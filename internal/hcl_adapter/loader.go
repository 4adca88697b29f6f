// Package hcl_adapter loads run configuration from HCL files.
package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/lidarcore/internal/config"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths, in lexical order, and overlays
// each onto base. A stage family may only be declared once across all files.
func (l *Loader) Load(ctx context.Context, base *config.Model, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := base
	if model == nil {
		model = config.Defaults()
	}
	declared := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, st := range root.Stages {
			if prev, ok := declared[st.Family]; ok {
				return nil, fmt.Errorf("stage '%s' declared in %s is already declared in %s", st.Family, file, prev)
			}
			declared[st.Family] = file
		}
		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "stages", len(model.Stages))
	return model, nil
}

// merge overlays root onto m.
func (l *Loader) merge(ctx context.Context, m *config.Model, root *fileRoot) error {
	set(&m.MetricsPort, root.MetricsPort)
	set(&m.VariantsDB, root.VariantsDB)

	if b := root.Log; b != nil {
		set(&m.Log.Level, b.Level)
		set(&m.Log.Format, b.Format)
	}

	if b := root.MonteCarlo; b != nil {
		m.MonteCarlo.Enabled = true
		set(&m.MonteCarlo.Enabled, b.Enabled)
		set(&m.MonteCarlo.Iterations, b.Iterations)
		set(&m.MonteCarlo.Workers, b.Workers)
		set(&m.MonteCarlo.Seed, b.Seed)
		set(&m.MonteCarlo.OnSampleFailure, b.OnSampleFailure)
	}

	if b := root.Synthetic; b != nil {
		s := &m.Synthetic
		set(&s.MeasurementID, b.MeasurementID)
		set(&s.Station, b.Station)
		set(&s.Product, b.Product)
		set(&s.Channels, b.Channels)
		set(&s.Times, b.Times)
		set(&s.Levels, b.Levels)
		set(&s.BinWidth, b.BinWidth)
		set(&s.Value, b.Value)
		set(&s.Sigma, b.Sigma)
		set(&s.Calibration, b.Calibration)
		set(&s.CalibrationError, b.CalibrationError)
		set(&s.PrepareWindow, b.PrepareWindow)
		set(&s.CommonWindow, b.CommonWindow)
		set(&s.CloudBase, b.CloudBase)
	}

	if m.Stages == nil && len(root.Stages) > 0 {
		m.Stages = make(map[string]*config.Stage, len(root.Stages))
	}
	for _, b := range root.Stages {
		args, err := l.stageArguments(ctx, b)
		if err != nil {
			return err
		}
		m.Stages[b.Family] = &config.Stage{Family: b.Family, Variant: b.Variant, Arguments: args}
	}
	return nil
}

// stageArguments evaluates the `arguments` object of a stage block.
func (l *Loader) stageArguments(ctx context.Context, b *StageBlock) (map[string]any, error) {
	if !isExprDefined(ctx, b.Arguments, "arguments") {
		return nil, nil
	}
	val, diags := b.Arguments.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("stage '%s': failed to evaluate arguments: %w", b.Family, diags)
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("stage '%s': arguments must be an object, got %s", b.Family, val.Type().FriendlyName())
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("stage '%s': arguments: %w", b.Family, err)
	}
	args, _ := native.(map[string]any)
	return args, nil
}
