package montecarlo

import (
	"errors"
	"fmt"
	"strings"
)

// FailurePolicy decides what a failed sample does to its invocation.
type FailurePolicy int

const (
	// Abort ends the invocation at the first failed sample.
	Abort FailurePolicy = iota
	// Exclude drops failed samples from the ensemble.
	Exclude
)

func (p FailurePolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Exclude:
		return "exclude"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseFailurePolicy parses "abort" or "exclude".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort", "":
		return Abort, nil
	case "exclude":
		return Exclude, nil
	}
	return Abort, fmt.Errorf("unknown sample failure policy %q: must be 'abort' or 'exclude'", s)
}

// MinSamples is the smallest ensemble a standard deviation is computed from.
const MinSamples = 2

// Config controls one engine.
type Config struct {
	// Iterations is the ensemble size.
	Iterations int
	// Workers is the pool size. Zero or one runs the samples serially.
	Workers int
	// Seed makes the draws reproducible.
	Seed uint64
	// OnSampleFailure is the failure policy.
	OnSampleFailure FailurePolicy
}

// DefaultConfig returns a serial, abort-on-failure configuration.
func DefaultConfig() Config {
	return Config{Iterations: 100, Workers: 1, Seed: 1, OnSampleFailure: Abort}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Iterations < MinSamples {
		errs = append(errs, fmt.Errorf("iterations must be at least %d, got %d", MinSamples, c.Iterations))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers cannot be negative, got %d", c.Workers))
	}
	if c.OnSampleFailure != Abort && c.OnSampleFailure != Exclude {
		errs = append(errs, fmt.Errorf("unknown sample failure policy %d", int(c.OnSampleFailure)))
	}
	return errors.Join(errs...)
}

// Parallel reports whether samples run on a worker pool.
func (c Config) Parallel() bool { return c.Workers > 1 }
