package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BenTyson/brickx/internal/model"
	"github.com/BenTyson/brickx/internal/source"
)

// Store receives fetched observations.
type Store interface {
	InsertObservations(ctx context.Context, observations []model.PriceObservation) error
}

// Config holds refresher configuration.
type Config struct {
	Limit int // Max sets fetched per run (default: 2500)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Limit: 2500}
}

// Refresher fetches current prices for a list of sets from every enabled
// marketplace and records the observations. Sets are processed
// sequentially so upstream rate limits stay the binding constraint;
// within one set, marketplaces are fetched concurrently.
type Refresher struct {
	cfg      Config
	fetchers []source.PriceFetcher
	store    Store
	logger   *slog.Logger
}

// New creates a refresher over the given fetchers.
func New(cfg Config, fetchers []source.PriceFetcher, store Store, logger *slog.Logger) *Refresher {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cfg:      cfg,
		fetchers: fetchers,
		store:    store,
		logger:   logger,
	}
}

// Run fetches and records observations for the given sets, truncated to
// the configured limit. One marketplace's failure never blocks the
// others; a set where every marketplace failed simply records nothing.
// Returns the number of observations recorded.
func (r *Refresher) Run(ctx context.Context, setIDs []string) (int, error) {
	if len(setIDs) > r.cfg.Limit {
		setIDs = setIDs[:r.cfg.Limit]
	}

	r.logger.Info("refreshing prices",
		"sets", len(setIDs),
		"sources", len(r.fetchers),
	)

	recorded := 0
	for i, setID := range setIDs {
		if err := ctx.Err(); err != nil {
			return recorded, err
		}

		observations := r.fetchSet(ctx, setID)
		if len(observations) == 0 {
			continue
		}

		if err := r.store.InsertObservations(ctx, observations); err != nil {
			r.logger.Warn("failed to record observations",
				"set_id", setID,
				"err", err,
			)
			continue
		}
		recorded += len(observations)

		if (i+1)%100 == 0 {
			r.logger.Info("refresh progress",
				"done", i+1,
				"total", len(setIDs),
				"recorded", recorded,
			)
		}
	}

	r.logger.Info("refresh complete",
		"sets", len(setIDs),
		"observations", recorded,
	)

	return recorded, nil
}

// fetchSet fans out to every fetcher for one set and collects the
// successes. Failures are logged and dropped.
func (r *Refresher) fetchSet(ctx context.Context, setID string) []model.PriceObservation {
	var (
		mu           sync.Mutex
		observations []model.PriceObservation
		wg           sync.WaitGroup
	)

	for _, fetcher := range r.fetchers {
		wg.Add(1)
		go func(f source.PriceFetcher) {
			defer wg.Done()

			obs, err := f.Fetch(ctx, setID)
			if err != nil {
				r.logger.Warn("source fetch failed",
					"set_id", setID,
					"source", f.Source(),
					"err", err,
				)
				return
			}
			if err := obs.Validate(); err != nil {
				r.logger.Warn("dropping invalid observation",
					"set_id", setID,
					"source", f.Source(),
					"err", err,
				)
				return
			}

			mu.Lock()
			observations = append(observations, *obs)
			mu.Unlock()
		}(fetcher)
	}
	wg.Wait()

	return observations
}
