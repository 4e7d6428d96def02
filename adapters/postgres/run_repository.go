package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"fairlens/domain/core"
	"fairlens/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Save stores a completed run. Re-saving the same ID refreshes the documents,
// which keeps the write idempotent for retries.
func (r *RunRepositoryImpl) Save(ctx context.Context, run ports.StoredRun) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO audit_runs (
			id, fingerprint, seed, test_fraction, config, reports, failures, created_at
		) VALUES (
			:id, :fingerprint, :seed, :test_fraction, :config, :reports, :failures, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			reports = EXCLUDED.reports,
			failures = EXCLUDED.failures
	`, run)
	return err
}

// Get retrieves one run by ID
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*ports.StoredRun, error) {
	var run ports.StoredRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, fingerprint, seed, test_fraction, config, reports, failures, created_at
		FROM audit_runs
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("audit run", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the newest runs first
func (r *RunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]ports.StoredRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ports.StoredRun
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, fingerprint, seed, test_fraction, config, reports, failures, created_at
		FROM audit_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return runs, err
}
