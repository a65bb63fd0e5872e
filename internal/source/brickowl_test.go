package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BenTyson/brickx/internal/api"
	"github.com/BenTyson/brickx/internal/model"
)

func TestBrickOwlFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "owl-key" {
			t.Errorf("key = %q, want owl-key", r.URL.Query().Get("key"))
		}

		switch r.URL.Path {
		case "/catalog/id_lookup":
			if r.URL.Query().Get("id") != "75192-1" {
				t.Errorf("id = %q, want 75192-1", r.URL.Query().Get("id"))
			}
			if r.URL.Query().Get("type") != "Set" || r.URL.Query().Get("id_type") != "design_id" {
				t.Errorf("lookup params = %v", r.URL.Query())
			}
			fmt.Fprint(w, `{"boids": ["901234-38", "901234-52"]}`)
		case "/catalog/pricing":
			if r.URL.Query().Get("boid") != "901234-38" {
				t.Errorf("boid = %q, want first boid", r.URL.Query().Get("boid"))
			}
			fmt.Fprint(w, `{
				"boid": "901234-38",
				"new_avg": "620.00",
				"new_min": "550.00",
				"new_max": "700.00",
				"new_qty": 12,
				"used_avg": "455.75",
				"used_min": null,
				"used_max": null,
				"used_qty": 0,
				"currency_code": "USD"
			}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := NewBrickOwl("owl-key", api.WithBaseURL(server.URL))
	obs, err := adapter.Fetch(context.Background(), "75192-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if obs.Source != model.SourceBrickOwl {
		t.Errorf("Source = %q", obs.Source)
	}
	if obs.NewAvg == nil || *obs.NewAvg != 620.00 {
		t.Errorf("NewAvg = %v, want 620.00", obs.NewAvg)
	}
	if obs.NewQtySold == nil || *obs.NewQtySold != 12 {
		t.Errorf("NewQtySold = %v, want 12", obs.NewQtySold)
	}
	if obs.UsedAvg == nil || *obs.UsedAvg != 455.75 {
		t.Errorf("UsedAvg = %v, want 455.75", obs.UsedAvg)
	}
	if obs.UsedMin != nil {
		t.Errorf("UsedMin = %v, want nil for null price", *obs.UsedMin)
	}
	if obs.UsedQtySold != nil {
		t.Errorf("UsedQtySold = %v, want nil for zero quantity", *obs.UsedQtySold)
	}
}

func TestBrickOwlNoBoid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/id_lookup" {
			t.Errorf("pricing must not be called without a boid, got %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"boids": []}`)
	}))
	defer server.Close()

	adapter := NewBrickOwl("owl-key", api.WithBaseURL(server.URL))
	if _, err := adapter.Fetch(context.Background(), "404-1"); err == nil {
		t.Fatal("Fetch() error = nil, want no-boid failure")
	}
}

func TestBrickOwlLookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewBrickOwl("bad-key", api.WithBaseURL(server.URL))
	if _, err := adapter.Fetch(context.Background(), "75192-1"); err == nil {
		t.Fatal("Fetch() error = nil, want auth failure")
	}
}
