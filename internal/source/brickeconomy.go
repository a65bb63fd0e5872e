package source

import (
	"context"
	"fmt"
	"time"

	"github.com/BenTyson/brickx/internal/api"
	"github.com/BenTyson/brickx/internal/model"
)

const brickEconomyBaseURL = "https://www.brickeconomy.com/api/v1"

// brickEconomyValuation is the set valuation payload. Unlike the other
// marketplaces, values arrive as numbers directly.
type brickEconomyValuation struct {
	SetNumber              string   `json:"set_number"`
	Name                   string   `json:"name"`
	Year                   int      `json:"year"`
	RetailPrice            *float64 `json:"retail_price"`
	CurrentNewValue        *float64 `json:"current_new_value"`
	CurrentUsedValue       *float64 `json:"current_used_value"`
	GrowthPercentage       *float64 `json:"growth_percentage"`
	AnnualGrowthPercentage *float64 `json:"annual_growth_percentage"`
	Currency               string   `json:"currency"`
}

// BrickEconomy fetches set valuations from the BrickEconomy API using a
// bearer token. It reports only current new/used values, no sold volumes.
type BrickEconomy struct {
	client *api.Client
}

// NewBrickEconomy creates the BrickEconomy adapter.
func NewBrickEconomy(apiKey string, opts ...api.Option) *BrickEconomy {
	defaults := []api.Option{
		api.WithHeader("Authorization", "Bearer "+apiKey),
	}
	return &BrickEconomy{
		client: api.New(brickEconomyBaseURL, append(defaults, opts...)...),
	}
}

// Source implements PriceFetcher.
func (b *BrickEconomy) Source() string { return model.SourceBrickEconomy }

// Fetch retrieves the current valuation for a set.
func (b *BrickEconomy) Fetch(ctx context.Context, setID string) (*model.PriceObservation, error) {
	var valuation brickEconomyValuation
	path := fmt.Sprintf("/set/%s/valuation", setID)
	if err := b.client.Get(ctx, path, nil, &valuation); err != nil {
		return nil, fmt.Errorf("brickeconomy valuation for %s: %w", setID, err)
	}

	return &model.PriceObservation{
		SetID:     setID,
		Source:    model.SourceBrickEconomy,
		NewAvg:    floatPtr(valuation.CurrentNewValue),
		UsedAvg:   floatPtr(valuation.CurrentUsedValue),
		FetchedAt: time.Now().UTC(),
	}, nil
}
