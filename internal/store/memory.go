package store

import (
	"context"
	"sync"

	"lpgroute/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu   sync.Mutex
	runs map[string]model.RunRecord
	ids  []string // insertion order, oldest first
}

func NewMemory() *Memory {
	return &Memory{runs: map[string]model.RunRecord{}}
}

func (m *Memory) SaveRun(ctx context.Context, rec model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[rec.ID]; !ok {
		m.ids = append(m.ids, rec.ID)
	}
	m.runs[rec.ID] = rec
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.runs[id]
	if !ok {
		return model.RunRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListRuns(ctx context.Context, cursor string, limit int) ([]model.RunSummary, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	// newest first
	start := len(m.ids) - 1
	if cursor != "" {
		start = -1
		for i := len(m.ids) - 1; i >= 0; i-- {
			if m.ids[i] == cursor {
				start = i - 1
				break
			}
		}
	}
	out := []model.RunSummary{}
	next := ""
	for i := start; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[m.ids[i]].Summary())
		if len(out) == limit && i > 0 {
			next = m.ids[i]
		}
	}
	return out, next, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
