package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lpgroute/internal/model"
)

// Postgres persists runs in a single table with the request, metrics, and
// both solutions stored as jsonb.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the runs table if missing. A dev helper; production schemas
// are managed externally.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS optimization_runs (
			id         uuid PRIMARY KEY,
			created_at timestamptz NOT NULL DEFAULT now(),
			request    jsonb NOT NULL,
			metrics    jsonb NOT NULL,
			baseline   jsonb,
			optimized  jsonb
		)`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (p *Postgres) SaveRun(ctx context.Context, rec model.RunRecord) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO optimization_runs (id, created_at, request, metrics, baseline, optimized)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET metrics=EXCLUDED.metrics, baseline=EXCLUDED.baseline, optimized=EXCLUDED.optimized`,
		rec.ID, rec.CreatedAt, toJSON(rec.Request), toJSON(rec.Metrics), toJSON(rec.Baseline), toJSON(rec.Optimized))
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", rec.ID, err)
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	var rec model.RunRecord
	var request, metrics, baseline, optimized []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, created_at, request, metrics, baseline, optimized
		 FROM optimization_runs WHERE id=$1`, id).
		Scan(&rec.ID, &rec.CreatedAt, &request, &metrics, &baseline, &optimized)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunRecord{}, ErrNotFound
	}
	if err != nil {
		return model.RunRecord{}, fmt.Errorf("store: get run %s: %w", id, err)
	}
	if err := json.Unmarshal(request, &rec.Request); err != nil {
		return model.RunRecord{}, fmt.Errorf("store: decode request: %w", err)
	}
	if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
		return model.RunRecord{}, fmt.Errorf("store: decode metrics: %w", err)
	}
	if len(baseline) > 0 {
		if err := json.Unmarshal(baseline, &rec.Baseline); err != nil {
			return model.RunRecord{}, fmt.Errorf("store: decode baseline: %w", err)
		}
	}
	if len(optimized) > 0 {
		if err := json.Unmarshal(optimized, &rec.Optimized); err != nil {
			return model.RunRecord{}, fmt.Errorf("store: decode optimized: %w", err)
		}
	}
	return rec, nil
}

func (p *Postgres) ListRuns(ctx context.Context, cursor string, limit int) ([]model.RunSummary, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id::text, created_at, request, metrics FROM optimization_runs`
	args := []any{}
	if cursor != "" {
		q += ` WHERE created_at < (SELECT created_at FROM optimization_runs WHERE id=$1)`
		args = append(args, cursor)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	out := []model.RunSummary{}
	for rows.Next() {
		var rec model.RunRecord
		var request, metrics []byte
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &request, &metrics); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(request, &rec.Request); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
			return nil, "", err
		}
		out = append(out, rec.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
