// Package montecarlo propagates uncertainty through an operation that has no
// closed-form error estimate.
//
// The engine asks an Adapter for the operation's named inputs, draws
// Config.Iterations perturbed copies of each (every defined cell drawn
// independently from Normal(value, error)), re-runs the operation once per
// sample and reduces the ensemble of results elementwise to a standard
// deviation, which becomes the propagated error array.
//
// All samples are drawn up front from one seeded source, so a given seed
// yields the same ensemble whether the samples run serially or on the worker
// pool. Workers share no mutable state: each receives its own copied inputs
// and returns its own result.
//
// What happens to a sample that fails or returns a malformed result is an
// explicit choice (FailurePolicy). Abort, the default, ends the whole
// invocation with *SampleFailureError; Exclude drops the sample from the
// ensemble.
package montecarlo
