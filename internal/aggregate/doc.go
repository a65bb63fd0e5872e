// Package aggregate distills multi-source price observations into per-set
// market values, trend signals, and a composite investment score.
//
// The computation functions are pure: they never perform I/O and never
// return an error for missing data — partial data is the expected case, so
// every result is either a finite value or nil. The Orchestrator wires the
// computations to a storage backend and handles per-set failure isolation.
package aggregate
