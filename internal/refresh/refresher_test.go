package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BenTyson/brickx/internal/model"
	"github.com/BenTyson/brickx/internal/source"
)

type fakeFetcher struct {
	source string
	err    error
	newAvg float64
}

func (f *fakeFetcher) Source() string { return f.source }

func (f *fakeFetcher) Fetch(ctx context.Context, setID string) (*model.PriceObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	avg := f.newAvg
	return &model.PriceObservation{
		SetID:     setID,
		Source:    f.source,
		NewAvg:    &avg,
		FetchedAt: time.Now().UTC(),
	}, nil
}

type recordingStore struct {
	mu       sync.Mutex
	inserted []model.PriceObservation
	err      error
}

func (s *recordingStore) InsertObservations(ctx context.Context, observations []model.PriceObservation) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, observations...)
	return nil
}

func TestRunCollectsAllSources(t *testing.T) {
	store := &recordingStore{}
	r := New(DefaultConfig(), []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, newAvg: 100},
		&fakeFetcher{source: model.SourceBrickEconomy, newAvg: 110},
		&fakeFetcher{source: model.SourceBrickOwl, newAvg: 90},
	}, store, nil)

	recorded, err := r.Run(context.Background(), []string{"75192-1", "10300-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorded != 6 {
		t.Errorf("recorded = %d, want 6 (3 sources x 2 sets)", recorded)
	}
	if len(store.inserted) != 6 {
		t.Errorf("inserted = %d, want 6", len(store.inserted))
	}
}

func TestRunOneSourceFailingDoesNotBlockOthers(t *testing.T) {
	store := &recordingStore{}
	r := New(DefaultConfig(), []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, err: errors.New("quota exhausted")},
		&fakeFetcher{source: model.SourceBrickEconomy, newAvg: 110},
	}, store, nil)

	recorded, err := r.Run(context.Background(), []string{"75192-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorded != 1 {
		t.Errorf("recorded = %d, want 1", recorded)
	}
	if len(store.inserted) != 1 || store.inserted[0].Source != model.SourceBrickEconomy {
		t.Errorf("inserted = %+v, want one brickeconomy observation", store.inserted)
	}
}

func TestRunAllSourcesFailingRecordsNothing(t *testing.T) {
	store := &recordingStore{}
	r := New(DefaultConfig(), []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, err: errors.New("down")},
		&fakeFetcher{source: model.SourceBrickOwl, err: errors.New("down")},
	}, store, nil)

	recorded, err := r.Run(context.Background(), []string{"75192-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorded != 0 {
		t.Errorf("recorded = %d, want 0", recorded)
	}
}

func TestRunInsertFailureSkipsSet(t *testing.T) {
	store := &recordingStore{err: errors.New("connection refused")}
	r := New(DefaultConfig(), []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, newAvg: 100},
	}, store, nil)

	recorded, err := r.Run(context.Background(), []string{"75192-1", "10300-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorded != 0 {
		t.Errorf("recorded = %d, want 0", recorded)
	}
}

func TestRunHonorsLimit(t *testing.T) {
	store := &recordingStore{}
	r := New(Config{Limit: 2}, []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, newAvg: 100},
	}, store, nil)

	recorded, err := r.Run(context.Background(), []string{"a-1", "b-1", "c-1", "d-1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorded != 2 {
		t.Errorf("recorded = %d, want 2 (limit)", recorded)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &recordingStore{}
	r := New(DefaultConfig(), []source.PriceFetcher{
		&fakeFetcher{source: model.SourceBrickLink, newAvg: 100},
	}, store, nil)

	if _, err := r.Run(ctx, []string{"75192-1"}); err == nil {
		t.Fatal("Run() error = nil, want context error")
	}
}
