package datastore

import (
	"strings"

	"github.com/specialistvlad/lidarcore/internal/artifact"
)

// Compartment names one category of stored artifact.
type Compartment string

const (
	ELPPSignals          Compartment = "elpp_signals"
	PreparedSignals      Compartment = "prepared_signals"
	AutoSmoothedProducts Compartment = "auto_smoothed_products"
	BasicProducts        Compartment = "basic_products"
	DerivedProducts      Compartment = "derived_products"
	LidarConstants       Compartment = "lidar_constants"
	ProductMatrices      Compartment = "product_matrices"
	CloudMaskSlot        Compartment = "cloud_mask"
	HeaderSlot           Compartment = "header"
)

// Key addresses one artifact slot.
type Key struct {
	Compartment Compartment
	Product     string
	Channel     string
	Resolution  artifact.Resolution
}

// String renders the key as a slash-separated path.
func (k Key) String() string {
	parts := []string{string(k.Compartment)}
	if k.Product != "" {
		parts = append(parts, k.Product)
	}
	if k.Channel != "" {
		parts = append(parts, k.Channel)
	}
	if k.Resolution != artifact.NoResolution {
		parts = append(parts, k.Resolution.String())
	}
	return strings.Join(parts, "/")
}
