package artifact

import (
	"fmt"
	"strings"
)

// Resolution is a vertical-smoothing regime some products are produced at.
type Resolution int

const (
	// NoResolution marks products that are not resolution-specific.
	NoResolution Resolution = iota
	Low
	High
)

// Resolutions lists the supported resolution classes.
var Resolutions = []Resolution{Low, High}

func (r Resolution) String() string {
	switch r {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "none"
	}
}

// ParseResolution parses "low" or "high".
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	}
	return NoResolution, fmt.Errorf("unknown resolution %q: must be 'low' or 'high'", s)
}
