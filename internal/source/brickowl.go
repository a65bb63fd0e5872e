package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/BenTyson/brickx/internal/api"
	"github.com/BenTyson/brickx/internal/model"
)

const brickOwlBaseURL = "https://api.brickowl.com/v1"

type brickOwlIDLookup struct {
	BOIDs []string `json:"boids"`
}

// brickOwlPricing reports prices as nullable decimal strings and
// quantities as plain integers.
type brickOwlPricing struct {
	BOID         string  `json:"boid"`
	NewAvg       *string `json:"new_avg"`
	NewMin       *string `json:"new_min"`
	NewMax       *string `json:"new_max"`
	NewQty       int     `json:"new_qty"`
	UsedAvg      *string `json:"used_avg"`
	UsedMin      *string `json:"used_min"`
	UsedMax      *string `json:"used_max"`
	UsedQty      int     `json:"used_qty"`
	CurrencyCode string  `json:"currency_code"`
}

// BrickOwl fetches pricing from the BrickOwl catalog API. Authentication
// is an API key passed as a query parameter, and every fetch is two calls:
// an id lookup mapping the set number to BrickOwl's internal id (BOID),
// then pricing by BOID.
type BrickOwl struct {
	client *api.Client
	apiKey string
}

// NewBrickOwl creates the BrickOwl adapter.
func NewBrickOwl(apiKey string, opts ...api.Option) *BrickOwl {
	return &BrickOwl{
		client: api.New(brickOwlBaseURL, opts...),
		apiKey: apiKey,
	}
}

// Source implements PriceFetcher.
func (b *BrickOwl) Source() string { return model.SourceBrickOwl }

// Fetch looks up the set's BOID and retrieves its pricing. A set with no
// BOID mapping is a fetch failure, not an empty observation.
func (b *BrickOwl) Fetch(ctx context.Context, setID string) (*model.PriceObservation, error) {
	lookupParams := url.Values{}
	lookupParams.Set("key", b.apiKey)
	lookupParams.Set("id", setID)
	lookupParams.Set("type", "Set")
	lookupParams.Set("id_type", "design_id")

	var lookup brickOwlIDLookup
	if err := b.client.Get(ctx, "/catalog/id_lookup", lookupParams, &lookup); err != nil {
		return nil, fmt.Errorf("brickowl id lookup for %s: %w", setID, err)
	}
	if len(lookup.BOIDs) == 0 {
		return nil, fmt.Errorf("brickowl: no boid found for %s", setID)
	}

	pricingParams := url.Values{}
	pricingParams.Set("key", b.apiKey)
	pricingParams.Set("boid", lookup.BOIDs[0])

	var pricing brickOwlPricing
	if err := b.client.Get(ctx, "/catalog/pricing", pricingParams, &pricing); err != nil {
		return nil, fmt.Errorf("brickowl pricing for %s: %w", setID, err)
	}

	return &model.PriceObservation{
		SetID:       setID,
		Source:      model.SourceBrickOwl,
		NewAvg:      parsePricePtr(pricing.NewAvg),
		NewMin:      parsePricePtr(pricing.NewMin),
		NewMax:      parsePricePtr(pricing.NewMax),
		NewQtySold:  qty(pricing.NewQty),
		UsedAvg:     parsePricePtr(pricing.UsedAvg),
		UsedMin:     parsePricePtr(pricing.UsedMin),
		UsedMax:     parsePricePtr(pricing.UsedMax),
		UsedQtySold: qty(pricing.UsedQty),
		FetchedAt:   time.Now().UTC(),
	}, nil
}
