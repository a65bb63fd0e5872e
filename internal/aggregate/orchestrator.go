package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BenTyson/brickx/internal/model"
)

// Store is the storage surface the orchestrator needs. Implemented by
// database.Store.
type Store interface {
	// ListSetIDs returns every set id with at least one observation.
	ListSetIDs(ctx context.Context) ([]string, error)

	// ObservationsForSet returns a set's full observation history,
	// newest first.
	ObservationsForSet(ctx context.Context, setID string) ([]model.PriceObservation, error)

	// UpsertMarketValues writes market-value rows keyed by set id,
	// replacing existing rows.
	UpsertMarketValues(ctx context.Context, values []model.MarketValue) error
}

// Config holds orchestrator settings.
type Config struct {
	BatchSize int // Rows per upsert batch (default: 500)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{BatchSize: 500}
}

// Orchestrator runs the aggregation pass: load history per set, compute a
// market value, and bulk-upsert the results.
type Orchestrator struct {
	cfg    Config
	store  Store
	logger *slog.Logger

	now func() time.Time // overridable in tests
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg Config, store Store, logger *slog.Logger) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Run aggregates the given sets, or every set with recorded observations
// when setIDs is empty. Sets are processed sequentially; a single set's
// load failure is logged and skipped, while a batch-write failure aborts
// the run since it indicates infrastructure trouble rather than one bad
// record. Returns the number of market-value rows written.
func (o *Orchestrator) Run(ctx context.Context, setIDs []string) (int, error) {
	if len(setIDs) == 0 {
		ids, err := o.store.ListSetIDs(ctx)
		if err != nil {
			return 0, fmt.Errorf("list set ids: %w", err)
		}
		setIDs = ids
	}

	o.logger.Info("aggregating prices", "sets", len(setIDs))

	values := make([]model.MarketValue, 0, len(setIDs))

	for _, setID := range setIDs {
		history, err := o.store.ObservationsForSet(ctx, setID)
		if err != nil {
			o.logger.Warn("failed to load observations",
				"set_id", setID,
				"err", err,
			)
			continue
		}
		if len(history) == 0 {
			continue
		}

		mv := ComputeMarketValue(latestPerSource(history), history, o.now())
		if mv != nil {
			values = append(values, *mv)
		}
	}

	written := 0
	for start := 0; start < len(values); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(values) {
			end = len(values)
		}
		if err := o.store.UpsertMarketValues(ctx, values[start:end]); err != nil {
			return written, fmt.Errorf("upsert market values: %w", err)
		}
		written += end - start
	}

	o.logger.Info("aggregation complete",
		"sets", len(setIDs),
		"values_written", written,
	)

	return written, nil
}

// latestPerSource reduces a newest-first history to one price point per
// source: the first observation seen for each source is its most recent.
func latestPerSource(history []model.PriceObservation) []model.PricePoint {
	seen := make(map[string]bool, len(history))
	points := make([]model.PricePoint, 0, len(sourceWeights))

	for _, o := range history {
		if seen[o.Source] {
			continue
		}
		seen[o.Source] = true
		points = append(points, o.PricePoint())
	}

	return points
}
