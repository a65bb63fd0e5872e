package source

import (
	"context"
	"strconv"
	"strings"

	"github.com/BenTyson/brickx/internal/model"
)

// PriceFetcher fetches one marketplace's current prices for a set. Each
// adapter maps its upstream response shape into the common observation
// shape; fields the upstream does not report stay nil.
type PriceFetcher interface {
	// Source returns the adapter's source identifier.
	Source() string

	// Fetch retrieves the current price observation for a set number.
	Fetch(ctx context.Context, setID string) (*model.PriceObservation, error)
}

// parsePrice converts a string-typed decimal price to a float pointer.
// Unparseable or non-positive values become nil rather than flowing into
// numeric computations downstream.
func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// parsePricePtr is parsePrice for fields the upstream makes nullable.
func parsePricePtr(s *string) *float64 {
	if s == nil {
		return nil
	}
	return parsePrice(*s)
}

// qty converts an integer quantity to a pointer, treating zero as absent.
func qty(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// floatPtr copies a nullable upstream number, dropping non-positive values.
func floatPtr(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	value := *v
	return &value
}
