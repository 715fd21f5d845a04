// Package store persists completed optimization runs. The API server uses
// the in-memory store unless DATABASE_URL points at Postgres.
package store

import (
	"context"
	"errors"

	"lpgroute/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// SaveRun persists a completed run under its id.
	SaveRun(ctx context.Context, rec model.RunRecord) error

	// GetRun returns one run with full solutions, or ErrNotFound.
	GetRun(ctx context.Context, id string) (model.RunRecord, error)

	// ListRuns pages newest-first. cursor is the id of the last item of the
	// previous page; empty cursor starts at the newest run.
	ListRuns(ctx context.Context, cursor string, limit int) (items []model.RunSummary, nextCursor string, err error)

	// Ping reports backend health for readiness checks.
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
