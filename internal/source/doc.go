// Package source holds one adapter per upstream marketplace. Each adapter
// maps its upstream's response shape into the common PriceObservation,
// parsing string-typed prices at the boundary so unparseable values become
// absent instead of leaking into computations.
package source
