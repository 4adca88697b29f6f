package app

import (
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/specialistvlad/lidarcore/modules/smoothing"
)

// Module contributes operation families to the registry.
type Module interface {
	// Families maps each provided family to its required arguments.
	Families() map[string][]string
	// Register binds the module's variants.
	Register(r *registry.Registry[operation.Constructor])
}

// coreModules is the definitive list of all modules that are compiled into
// the lidarcore binary.
var coreModules = []Module{
	&smoothing.Module{},
}
