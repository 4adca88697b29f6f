// Package app contains the core application logic. It wires configuration,
// the variant registry, the data store, the Monte Carlo engine and metrics
// into a runnable measurement pipeline, decoupled from any specific
// entrypoint like a CLI or server.
package app
