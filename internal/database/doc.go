// Package database provides the PostgreSQL connection pool and the store
// over the two pricing tables:
//   - set_prices: append-only per-source price observations
//   - market_values: one aggregated row per set, replaced on each run
package database
