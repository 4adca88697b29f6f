// Package variant provides the sources that tell a factory which variant of
// an operation family to build.
package variant

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Source returns the configured variant name for an operation family.
type Source interface {
	Variant(ctx context.Context, family string) (string, error)
}

// NotConfiguredError is returned when a source has no entry for a family.
type NotConfiguredError struct {
	Family string
	Source string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("no variant configured for family '%s' in %s", e.Family, e.Source)
}

// Static is an in-memory family -> variant table.
type Static map[string]string

// Variant implements Source.
func (s Static) Variant(_ context.Context, family string) (string, error) {
	name, ok := s[family]
	if !ok {
		return "", &NotConfiguredError{Family: family, Source: "static table"}
	}
	return name, nil
}

// Families returns the configured families, sorted.
func (s Static) Families() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Chain consults each source in order and returns the first configured
// variant. Errors other than NotConfiguredError stop the search.
type Chain []Source

// Variant implements Source.
func (c Chain) Variant(ctx context.Context, family string) (string, error) {
	for _, src := range c {
		name, err := src.Variant(ctx, family)
		if err == nil {
			return name, nil
		}
		var nc *NotConfiguredError
		if !errors.As(err, &nc) {
			return "", err
		}
	}
	return "", &NotConfiguredError{Family: family, Source: "source chain"}
}
