package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BenTyson/brickx/internal/model"
)

// Store reads and writes price observations and market values. It backs
// both the ingestion flow (observation inserts) and the aggregation flow
// (history reads, market-value upserts).
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a store over an existing pool.
func NewStore(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// InsertObservations appends price observations using pgx.Batch. Rows are
// append-only; there is no conflict target because (set, source, time)
// rows are always new.
func (s *Store) InsertObservations(ctx context.Context, observations []model.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range observations {
		id := o.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO set_prices (
				id, set_id, source,
				new_avg, new_min, new_max, new_qty_sold,
				used_avg, used_min, used_max, used_qty_sold,
				fetched_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, id, o.SetID, o.Source,
			o.NewAvg, o.NewMin, o.NewMax, o.NewQtySold,
			o.UsedAvg, o.UsedMin, o.UsedMax, o.UsedQtySold,
			o.FetchedAt)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range observations {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert observation: %w", err)
		}
	}

	return nil
}

// ObservationsForSet returns a set's full observation history, newest
// first.
func (s *Store) ObservationsForSet(ctx context.Context, setID string) ([]model.PriceObservation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, set_id, source,
		       new_avg, new_min, new_max, new_qty_sold,
		       used_avg, used_min, used_max, used_qty_sold,
		       fetched_at
		FROM set_prices
		WHERE set_id = $1
		ORDER BY fetched_at DESC
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query observations for %s: %w", setID, err)
	}
	defer rows.Close()

	var observations []model.PriceObservation
	for rows.Next() {
		var o model.PriceObservation
		if err := rows.Scan(
			&o.ID, &o.SetID, &o.Source,
			&o.NewAvg, &o.NewMin, &o.NewMax, &o.NewQtySold,
			&o.UsedAvg, &o.UsedMin, &o.UsedMax, &o.UsedQtySold,
			&o.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return observations, nil
}

// ListSetIDs returns every set id with at least one observation.
func (s *Store) ListSetIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT set_id FROM set_prices ORDER BY set_id`)
	if err != nil {
		return nil, fmt.Errorf("query set ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan set id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set ids: %w", err)
	}

	return ids, nil
}

// UpsertMarketValues writes market-value rows using pgx.Batch, keyed by
// set id. Each aggregation run fully replaces the prior values.
func (s *Store) UpsertMarketValues(ctx context.Context, values []model.MarketValue) error {
	if len(values) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, v := range values {
		batch.Queue(`
			INSERT INTO market_values (
				set_id, market_value_new, market_value_used,
				pct_change_7d, pct_change_30d, pct_change_90d,
				growth_annual_pct, investment_score, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (set_id) DO UPDATE SET
				market_value_new = EXCLUDED.market_value_new,
				market_value_used = EXCLUDED.market_value_used,
				pct_change_7d = EXCLUDED.pct_change_7d,
				pct_change_30d = EXCLUDED.pct_change_30d,
				pct_change_90d = EXCLUDED.pct_change_90d,
				growth_annual_pct = EXCLUDED.growth_annual_pct,
				investment_score = EXCLUDED.investment_score,
				updated_at = now()
		`, v.SetID, v.MarketValueNew, v.MarketValueUsed,
			v.PctChange7d, v.PctChange30d, v.PctChange90d,
			v.GrowthAnnualPct, v.InvestmentScore)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range values {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert market value: %w", err)
		}
	}

	return nil
}
