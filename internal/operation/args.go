package operation

import (
	"fmt"
	"math"
	"sort"

	"github.com/specialistvlad/lidarcore/internal/artifact"
)

// Args is the keyword argument set handed to a constructor.
type Args map[string]any

// Missing returns the required keys absent from a, sorted.
func (a Args) Missing(required []string) []string {
	var missing []string
	for _, k := range required {
		if _, ok := a[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}

// ArgumentError reports an argument of the wrong type or value.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument '%s': %s", e.Name, e.Reason)
}

// Artifact returns the artifact stored under name.
func (a Args) Artifact(name string) (*artifact.Artifact, error) {
	v, ok := a[name]
	if !ok {
		return nil, &ArgumentError{Name: name, Reason: "missing"}
	}
	art, ok := v.(*artifact.Artifact)
	if !ok || art == nil {
		return nil, &ArgumentError{Name: name, Reason: fmt.Sprintf("want *artifact.Artifact, got %T", v)}
	}
	return art, nil
}

// Float returns name as a float64. Integer values are widened.
func (a Args) Float(name string) (float64, error) {
	switch v := a[name].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case nil:
		return 0, &ArgumentError{Name: name, Reason: "missing"}
	default:
		return 0, &ArgumentError{Name: name, Reason: fmt.Sprintf("want number, got %T", v)}
	}
}

// Int returns name as an int. Float values must be integral; config files
// decode every number as float64.
func (a Args) Int(name string) (int, error) {
	switch v := a[name].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, &ArgumentError{Name: name, Reason: fmt.Sprintf("want integer, got %v", v)}
		}
		return int(v), nil
	case nil:
		return 0, &ArgumentError{Name: name, Reason: "missing"}
	default:
		return 0, &ArgumentError{Name: name, Reason: fmt.Sprintf("want integer, got %T", v)}
	}
}

// String returns name as a string.
func (a Args) String(name string) (string, error) {
	v, ok := a[name].(string)
	if !ok {
		return "", &ArgumentError{Name: name, Reason: fmt.Sprintf("want string, got %T", a[name])}
	}
	return v, nil
}

// With returns a shallow copy of a with the given pairs added or replaced.
func (a Args) With(extra Args) Args {
	out := make(Args, len(a)+len(extra))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
