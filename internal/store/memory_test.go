package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lpgroute/internal/compare"
	"lpgroute/internal/model"
)

func rec(id string, km float64) model.RunRecord {
	return model.RunRecord{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Request:   model.OptimizeRequest{NumDeliveries: 10},
		Metrics:   compare.Metrics{DistanceBeforeKm: km, DistanceAfterKm: km * 0.8},
	}
}

func TestMemorySaveGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.SaveRun(ctx, rec("r1", 100)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := m.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Metrics.DistanceBeforeKm != 100 {
		t.Fatalf("got %v, want 100", got.Metrics.DistanceBeforeKm)
	}

	if _, err := m.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := m.SaveRun(ctx, rec(fmt.Sprintf("r%d", i), float64(i))); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	items, next, err := m.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if next != "" {
		t.Fatalf("unexpected cursor %q", next)
	}
	if len(items) != 3 || items[0].ID != "r3" || items[2].ID != "r1" {
		t.Fatalf("bad order: %+v", items)
	}
}

func TestMemoryListPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_ = m.SaveRun(ctx, rec(fmt.Sprintf("r%d", i), float64(i)))
	}

	page1, cursor, err := m.ListRuns(ctx, "", 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(page1) != 2 || cursor == "" {
		t.Fatalf("page1: %+v cursor=%q", page1, cursor)
	}

	page2, _, err := m.ListRuns(ctx, cursor, 2)
	if err != nil {
		t.Fatalf("ListRuns page2: %v", err)
	}
	if len(page2) != 2 || page2[0].ID == page1[1].ID {
		t.Fatalf("page2 overlaps: %+v vs %+v", page2, page1)
	}
}

func TestMemorySaveOverwrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.SaveRun(ctx, rec("r1", 100))
	_ = m.SaveRun(ctx, rec("r1", 200))

	items, _, err := m.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(items) != 1 || items[0].DistanceBeforeKm != 200 {
		t.Fatalf("overwrite not applied: %+v", items)
	}
}
