//go:build postgres_integration

package store

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"lpgroute/internal/compare"
	"lpgroute/internal/model"
)

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	if err := p.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	rec := model.RunRecord{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Request:   model.OptimizeRequest{Seed: 1, NumDeliveries: 5},
		Metrics:   compare.Metrics{DistanceBeforeKm: 10, DistanceAfterKm: 8},
	}
	if err := p.SaveRun(t.Context(), rec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := p.GetRun(t.Context(), rec.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Metrics.DistanceAfterKm != 8 {
		t.Fatalf("got %v, want 8", got.Metrics.DistanceAfterKm)
	}
	if _, _, err := p.ListRuns(t.Context(), "", 1); err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
}
