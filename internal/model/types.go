package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Sources
// -----------------------------------------------------------------------------

// Known marketplace source identifiers. Observations carry one of these;
// anything else is treated as an unrecognized source by the aggregator.
const (
	SourceBrickLink    = "bricklink"
	SourceBrickEconomy = "brickeconomy"
	SourceBrickOwl     = "brickowl"
)

// -----------------------------------------------------------------------------
// Observations
// -----------------------------------------------------------------------------

// PriceObservation is one source's snapshot of one set's prices at one point
// in time. Rows are append-only; multiple observations per (set, source)
// accumulate over time.
type PriceObservation struct {
	ID     uuid.UUID
	SetID  string // Set number (e.g. "75192-1")
	Source string // One of the Source* constants

	NewAvg     *float64
	NewMin     *float64
	NewMax     *float64
	NewQtySold *int

	UsedAvg     *float64
	UsedMin     *float64
	UsedMax     *float64
	UsedQtySold *int

	FetchedAt time.Time
}

// Validate checks the invariants every recorded observation must hold.
func (o *PriceObservation) Validate() error {
	if o.SetID == "" {
		return errors.New("observation set id is empty")
	}
	if o.Source == "" {
		return errors.New("observation source is empty")
	}
	if o.FetchedAt.IsZero() {
		return errors.New("observation timestamp is zero")
	}
	return nil
}

// PricePoint reduces an observation to the fields used for weighted
// averaging. Derived on demand, never persisted.
func (o *PriceObservation) PricePoint() PricePoint {
	return PricePoint{
		Source:     o.Source,
		NewAvg:     o.NewAvg,
		UsedAvg:    o.UsedAvg,
		NewQtySold: o.NewQtySold,
	}
}

// PricePoint is the most recent reading from one source, used as the
// "current" value when computing a market value.
type PricePoint struct {
	Source     string
	NewAvg     *float64
	UsedAvg    *float64
	NewQtySold *int
}

// -----------------------------------------------------------------------------
// Market values
// -----------------------------------------------------------------------------

// MarketValue is the aggregator's output: one row per set, fully replaced on
// every aggregation run. All numeric fields are nil when the inputs required
// to compute them were absent.
type MarketValue struct {
	SetID           string
	MarketValueNew  *float64
	MarketValueUsed *float64
	PctChange7d     *float64
	PctChange30d    *float64
	PctChange90d    *float64
	GrowthAnnualPct *float64
	InvestmentScore *int
}
