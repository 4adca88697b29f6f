// Package artifact defines the numeric products that flow between pipeline
// stages: per-cell data over (time, level) with a paired absolute error, a
// quality mask and the effective vertical bin resolution of every cell.
//
// Artifacts are treated as immutable once published to the data store. Every
// type in this package offers a Clone method returning a deep, independent
// copy, which is what the data store hands out on every read.
package artifact
