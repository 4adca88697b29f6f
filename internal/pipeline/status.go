package pipeline

import (
	"context"
	"errors"

	"github.com/specialistvlad/lidarcore/internal/datastore"
	"github.com/specialistvlad/lidarcore/internal/montecarlo"
	"github.com/specialistvlad/lidarcore/internal/operation"
	"github.com/specialistvlad/lidarcore/internal/registry"
	"github.com/specialistvlad/lidarcore/internal/variant"
)

// Kind classifies the outcome of a run for the orchestration layer.
type Kind string

const (
	KindOK                   Kind = "ok"
	KindNotFound             Kind = "not_found"
	KindStorageConflict      Kind = "storage_conflict"
	KindRegistrationConflict Kind = "registration_conflict"
	KindSampleFailure        Kind = "sample_failure"
	KindInvalidArguments     Kind = "invalid_arguments"
	KindUnresolvedVariant    Kind = "unresolved_variant"
	KindCancelled            Kind = "cancelled"
	KindInternal             Kind = "internal"
)

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOK
	}
	var (
		notFound    *datastore.NotFoundError
		storeConf   *datastore.ConflictError
		regConf     *registry.ConflictError
		sampleFail  *montecarlo.SampleFailureError
		tooFew      *montecarlo.InsufficientSamplesError
		missingArgs *operation.MissingArgumentsError
		badArg      *operation.ArgumentError
		unresolved  *operation.UnresolvedVariantError
		notConf     *variant.NotConfiguredError
	)
	switch {
	case errors.As(err, &storeConf):
		return KindStorageConflict
	case errors.As(err, &regConf):
		return KindRegistrationConflict
	case errors.As(err, &sampleFail), errors.As(err, &tooFew):
		return KindSampleFailure
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &missingArgs), errors.As(err, &badArg):
		return KindInvalidArguments
	case errors.As(err, &unresolved), errors.As(err, &notConf):
		return KindUnresolvedVariant
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	}
	return KindInternal
}

// Status is the structured outcome of one run.
type Status struct {
	RunID   string
	Stage   string
	Kind    Kind
	Message string
	// Err is the error that ended the run, nil on success.
	Err error
}

// OK reports whether the run completed.
func (s Status) OK() bool { return s.Kind == KindOK }
