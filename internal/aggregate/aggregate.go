package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/BenTyson/brickx/internal/model"
)

// Trust weights per marketplace. BrickLink carries the most weight as the
// largest sold-order dataset; unrecognized sources contribute a token 0.1.
var sourceWeights = map[string]float64{
	model.SourceBrickLink:    0.5,
	model.SourceBrickEconomy: 0.3,
	model.SourceBrickOwl:     0.2,
}

const defaultSourceWeight = 0.1

// matchTolerance bounds how far a historical observation may sit from the
// percent-change target date and still count as a comparison point.
const matchTolerance = 3 * 24 * time.Hour

// minGrowthSpanDays is the shortest history span that annualizes without
// producing noise-dominated rates.
const minGrowthSpanDays = 30

// Condition selects which price field a computation reads.
type Condition int

const (
	ConditionNew Condition = iota
	ConditionUsed
)

func (c Condition) value(p model.PricePoint) *float64 {
	if c == ConditionUsed {
		return p.UsedAvg
	}
	return p.NewAvg
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// finite returns a pointer to v, or nil if v is NaN or infinite. Emitted
// signals must always be finite or absent.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WeightedAverage combines the selected price field across sources using
// trust weights, normalized over the sources that actually contributed.
// Losing a source therefore shifts weight to the remainder instead of
// dragging the average toward zero. Returns nil when no source contributed.
func WeightedAverage(points []model.PricePoint, cond Condition) *float64 {
	var weightedSum, totalWeight float64

	for _, p := range points {
		value := cond.value(p)
		if value == nil {
			continue
		}
		weight, ok := sourceWeights[p.Source]
		if !ok {
			weight = defaultSourceWeight
		}
		weightedSum += *value * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return nil
	}
	return finite(round2(weightedSum / totalWeight))
}

// PctChange computes the percent change from the historical observation
// closest to now-daysAgo (within ±3 days) to current. Returns nil when
// current is absent or zero, no observation falls inside the tolerance
// band, or the matched observation has no usable value.
func PctChange(current *float64, history []model.PriceObservation, daysAgo int, now time.Time) *float64 {
	if current == nil || *current == 0 {
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	target := now.AddDate(0, 0, -daysAgo)

	var closest *model.PriceObservation
	closestDiff := matchTolerance + 1
	for i := range history {
		diff := history[i].FetchedAt.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff <= matchTolerance && diff < closestDiff {
			closest = &history[i]
			closestDiff = diff
		}
	}

	if closest == nil {
		return nil
	}

	old := closest.NewAvg
	if old == nil || *old == 0 {
		return nil
	}

	return finite(round2((*current - *old) / *old * 100))
}

// AnnualGrowth annualizes the price change between the chronologically
// earliest and latest observations carrying a new-average value. Histories
// spanning under 30 days are too noisy to annualize and return nil, as does
// a non-positive starting value.
func AnnualGrowth(history []model.PriceObservation) *float64 {
	if len(history) < 2 {
		return nil
	}

	priced := make([]model.PriceObservation, 0, len(history))
	for _, o := range history {
		if o.NewAvg != nil {
			priced = append(priced, o)
		}
	}
	if len(priced) < 2 {
		return nil
	}

	sort.Slice(priced, func(i, j int) bool {
		return priced[i].FetchedAt.Before(priced[j].FetchedAt)
	})

	oldest := priced[0]
	newest := priced[len(priced)-1]

	days := newest.FetchedAt.Sub(oldest.FetchedAt).Hours() / 24
	if days < minGrowthSpanDays {
		return nil
	}
	if *oldest.NewAvg <= 0 {
		return nil
	}

	years := days / 365.25
	rate := (math.Pow(*newest.NewAvg / *oldest.NewAvg, 1/years) - 1) * 100
	return finite(round2(rate))
}

// InvestmentScore builds a 0-100 composite from up to four independently
// optional components worth 25 points each, normalized by how many had
// data. Returns nil when no component had data.
//
// Components: absolute value tier, 30d/90d momentum blend, log-scaled
// liquidity, and annualized growth tier.
func InvestmentScore(marketValueNew, pctChange30d, pctChange90d *float64, totalQtySold *int, annualGrowth *float64) *int {
	var score float64
	components := 0

	// Value tier.
	if marketValueNew != nil {
		components++
		switch v := *marketValueNew; {
		case v >= 1000:
			score += 25
		case v >= 500:
			score += 20
		case v >= 200:
			score += 15
		case v >= 50:
			score += 10
		default:
			score += 5
		}
	}

	// Momentum: 30d at 0.4, 90d at 0.6, renormalized when one is missing,
	// clamped to ±50% and mapped linearly onto [0,25].
	if pctChange30d != nil || pctChange90d != nil {
		components++
		var momentum, weight float64
		if pctChange30d != nil {
			momentum += *pctChange30d * 0.4
			weight += 0.4
		}
		if pctChange90d != nil {
			momentum += *pctChange90d * 0.6
			weight += 0.6
		}
		blended := momentum / weight
		clamped := math.Max(-50, math.Min(50, blended))
		score += math.Round((clamped + 50) / 100 * 25)
	}

	// Liquidity: log10 of quantity sold, clamped to [0,4] (1 to 10000
	// units) and mapped onto [0,25].
	if totalQtySold != nil && *totalQtySold > 0 {
		components++
		logQty := math.Log10(float64(*totalQtySold))
		clamped := math.Max(0, math.Min(4, logQty))
		score += math.Round(clamped / 4 * 25)
	}

	// Growth trajectory tiers.
	if annualGrowth != nil {
		components++
		switch g := *annualGrowth; {
		case g > 20:
			score += 25
		case g > 10:
			score += 20
		case g > 5:
			score += 15
		case g > 0:
			score += 10
		}
	}

	if components == 0 {
		return nil
	}

	normalized := int(math.Round(score / (float64(components) * 25) * 100))
	return &normalized
}

// ComputeMarketValue assembles the full market-value record for one set
// from its latest per-source price points and full observation history.
// Returns nil when there are no latest points or no history to derive the
// set id from.
func ComputeMarketValue(latest []model.PricePoint, history []model.PriceObservation, now time.Time) *model.MarketValue {
	if len(latest) == 0 {
		return nil
	}
	if len(history) == 0 {
		return nil
	}
	setID := history[0].SetID

	marketValueNew := WeightedAverage(latest, ConditionNew)
	marketValueUsed := WeightedAverage(latest, ConditionUsed)

	pctChange7d := PctChange(marketValueNew, history, 7, now)
	pctChange30d := PctChange(marketValueNew, history, 30, now)
	pctChange90d := PctChange(marketValueNew, history, 90, now)
	growthAnnual := AnnualGrowth(history)

	// Quantity sold comes from BrickLink only: the one source reporting
	// sold-order volume. When BrickLink is absent the liquidity component
	// is skipped and the score renormalizes over the rest.
	var totalQtySold *int
	for _, p := range latest {
		if p.Source == model.SourceBrickLink {
			totalQtySold = p.NewQtySold
			break
		}
	}

	return &model.MarketValue{
		SetID:           setID,
		MarketValueNew:  marketValueNew,
		MarketValueUsed: marketValueUsed,
		PctChange7d:     pctChange7d,
		PctChange30d:    pctChange30d,
		PctChange90d:    pctChange90d,
		GrowthAnnualPct: growthAnnual,
		InvestmentScore: InvestmentScore(marketValueNew, pctChange30d, pctChange90d, totalQtySold, growthAnnual),
	}
}
