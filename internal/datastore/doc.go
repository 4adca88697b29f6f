// Package datastore holds every intermediate and final artifact of one
// measurement run.
//
// # Layout
//
// The store is split into compartments, one per category of artifact. Inside a
// compartment, entries are keyed by product id and then, where the category
// needs it, by channel id or resolution class:
//
//   - elpp signals and prepared signals: product, channel
//   - auto-smoothed basic products: product
//   - common-smoothed basic and derived products: product, resolution
//   - lidar constants: product, channel
//   - product matrices: product type, resolution
//   - cloud mask and measurement header: one singleton slot each
//
// # Contract
//
// Writes take ownership of the value and replace the slot wholesale. Reads
// never alias stored state: every getter returns a deep copy, which is what
// makes it safe to hand artifacts to Monte Carlo workers. A read whose key
// path is absent at any segment returns *NotFoundError; an empty intermediate
// map counts as absent and never yields an empty result.
//
// The singleton slots enforce that every ingested source describes one
// measurement: setting a second, differing cloud mask or header returns
// *ConflictError.
//
// The store is created per run and discarded at process exit. It is guarded
// by a RWMutex but is not designed for concurrent writers.
package datastore
