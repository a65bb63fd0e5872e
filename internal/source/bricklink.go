package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BenTyson/brickx/internal/api"
	"github.com/BenTyson/brickx/internal/model"
	"github.com/BenTyson/brickx/internal/oauth1"
)

const brickLinkBaseURL = "https://api.bricklink.com/api/store/v1"

// BrickLink numbers catalog items without the marketing variant suffix, so
// "75192-1" is queried as "75192".
var setVariantSuffix = regexp.MustCompile(`-\d+$`)

// brickLinkResponse is the store API envelope. The payload of interest is
// under data; meta carries the API-level status.
type brickLinkResponse struct {
	Meta struct {
		Description string `json:"description"`
		Message     string `json:"message"`
		Code        int    `json:"code"`
	} `json:"meta"`
	Data brickLinkPriceGuide `json:"data"`
}

// brickLinkPriceGuide is one condition's sold-price guide. Prices arrive as
// decimal strings.
type brickLinkPriceGuide struct {
	Item struct {
		No   string `json:"no"`
		Type string `json:"type"`
	} `json:"item"`
	NewOrUsed     string `json:"new_or_used"`
	CurrencyCode  string `json:"currency_code"`
	MinPrice      string `json:"min_price"`
	MaxPrice      string `json:"max_price"`
	AvgPrice      string `json:"avg_price"`
	TotalQuantity int    `json:"total_quantity"`
}

// BrickLink fetches sold-order price guides from the BrickLink store API.
// Requests are OAuth1-signed per attempt so retries never reuse a nonce.
type BrickLink struct {
	client *api.Client
}

// NewBrickLink creates the BrickLink adapter. The client signs every
// attempt with the given credentials and shares the daily-quota limiter.
func NewBrickLink(creds oauth1.Credentials, opts ...api.Option) *BrickLink {
	headerFunc := func(method, fullURL string) (map[string]string, error) {
		u, err := url.Parse(fullURL)
		if err != nil {
			return nil, fmt.Errorf("parse request url: %w", err)
		}
		base := u.Scheme + "://" + u.Host + u.Path
		header, err := creds.AuthorizationHeader(method, base, u.Query())
		if err != nil {
			return nil, err
		}
		return map[string]string{"Authorization": header}, nil
	}

	defaults := []api.Option{
		api.WithRetries(2, time.Second),
		api.WithHeaderFunc(headerFunc),
	}
	return &BrickLink{
		client: api.New(brickLinkBaseURL, append(defaults, opts...)...),
	}
}

// Source implements PriceFetcher.
func (b *BrickLink) Source() string { return model.SourceBrickLink }

// Fetch retrieves the new and used price guides concurrently and merges
// them into one observation. Either guide failing fails the whole fetch;
// partial per-source data is handled across sources, not within one.
func (b *BrickLink) Fetch(ctx context.Context, setID string) (*model.PriceObservation, error) {
	var newGuide, usedGuide brickLinkPriceGuide

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		guide, err := b.priceGuide(gctx, setID, "N")
		if err != nil {
			return err
		}
		newGuide = *guide
		return nil
	})
	g.Go(func() error {
		guide, err := b.priceGuide(gctx, setID, "U")
		if err != nil {
			return err
		}
		usedGuide = *guide
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.PriceObservation{
		SetID:       setID,
		Source:      model.SourceBrickLink,
		NewAvg:      parsePrice(newGuide.AvgPrice),
		NewMin:      parsePrice(newGuide.MinPrice),
		NewMax:      parsePrice(newGuide.MaxPrice),
		NewQtySold:  qty(newGuide.TotalQuantity),
		UsedAvg:     parsePrice(usedGuide.AvgPrice),
		UsedMin:     parsePrice(usedGuide.MinPrice),
		UsedMax:     parsePrice(usedGuide.MaxPrice),
		UsedQtySold: qty(usedGuide.TotalQuantity),
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// priceGuide fetches one condition's sold-price guide.
func (b *BrickLink) priceGuide(ctx context.Context, setID, condition string) (*brickLinkPriceGuide, error) {
	itemNo := setVariantSuffix.ReplaceAllString(setID, "")

	params := url.Values{}
	params.Set("new_or_used", condition)
	params.Set("guide_type", "sold")

	var resp brickLinkResponse
	path := fmt.Sprintf("/items/SET/%s/price", itemNo)
	if err := b.client.Get(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("bricklink price guide for %s (%s): %w", setID, condition, err)
	}

	return &resp.Data, nil
}
