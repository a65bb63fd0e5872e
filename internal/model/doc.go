// Package model defines shared data types used across the brickx pricing
// pipeline.
//
// Conventions:
//   - Prices: *float64, nil meaning "no data from this source"
//   - Quantities: *int, same nil convention
//   - Timestamps: time.Time in UTC
//   - IDs: string set numbers (e.g. "75192-1"), uuid.UUID for observation rows
package model
