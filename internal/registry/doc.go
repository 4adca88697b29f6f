// Package registry maps an operation family and a variant name to a concrete
// implementation chosen at run time.
//
// Bindings are registered once during startup and are read-only afterwards.
// A family may carry at most one override binding; while it exists it answers
// every lookup for that family regardless of the variant requested, which lets
// one implementation be forced globally (for example in tests) without
// touching call sites.
//
// Resolution failure is reported as a boolean sentinel rather than an error:
// the caller (usually operation.Factory) decides whether an unresolved lookup
// is fatal.
package registry
