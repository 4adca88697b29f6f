package operation

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/lidarcore/internal/ctxlog"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/specialistvlad/lidarcore/internal/variant"
)

// MissingArgumentsError lists every required argument absent from a factory call.
type MissingArgumentsError struct {
	Family  string
	Missing []string
}

func (e *MissingArgumentsError) Error() string {
	return fmt.Sprintf("%s: missing required arguments: %s", e.Family, strings.Join(e.Missing, ", "))
}

// UnresolvedVariantError is returned when the registry has no binding for the
// configured variant.
type UnresolvedVariantError struct {
	Family  string
	Variant string
}

func (e *UnresolvedVariantError) Error() string {
	return fmt.Sprintf("%s: no implementation registered for variant '%s'", e.Family, e.Variant)
}

// Factory builds operations of one family.
type Factory struct {
	Family   string
	Required []string
	Variants variant.Source
	Registry *registry.Registry[Constructor]
}

// Build validates args, resolves the configured variant and constructs the
// operation without initialising it.
func (f *Factory) Build(ctx context.Context, args Args) (Operation, string, error) {
	logger := ctxlog.FromContext(ctx).With("family", f.Family)

	if missing := args.Missing(f.Required); len(missing) > 0 {
		return nil, "", &MissingArgumentsError{Family: f.Family, Missing: missing}
	}

	name, err := f.Variants.Variant(ctx, f.Family)
	if err != nil {
		return nil, "", fmt.Errorf("%s: look up variant: %w", f.Family, err)
	}

	ctor, ok := f.Registry.Resolve(f.Family, name)
	if !ok {
		return nil, name, &UnresolvedVariantError{Family: f.Family, Variant: name}
	}
	if forced, ok := f.Registry.Override(f.Family); ok && forced != name {
		logger.Debug("Override binding replaces configured variant.", "configured", name, "override", forced)
		name = forced
	}

	op, err := ctor(args)
	if err != nil {
		return nil, name, fmt.Errorf("%s/%s: construct: %w", f.Family, name, err)
	}
	logger.Debug("Operation constructed.", "variant", name)
	return op, name, nil
}

// New builds the operation and runs its Init.
func (f *Factory) New(ctx context.Context, args Args) (Operation, error) {
	op, name, err := f.Build(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := op.Init(ctx); err != nil {
		return nil, fmt.Errorf("%s/%s: init: %w", f.Family, name, err)
	}
	return op, nil
}
