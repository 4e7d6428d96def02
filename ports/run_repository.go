package ports

import (
	"context"
	"encoding/json"

	"fairlens/domain/core"
)

// StoredRun is the persistence projection of a completed audit run. Reports,
// config and failures are stored as JSON documents; the relational columns
// exist for querying by fingerprint and recency.
type StoredRun struct {
	ID           core.RunID       `db:"id" json:"id"`
	Fingerprint  core.Fingerprint `db:"fingerprint" json:"fingerprint"`
	Seed         int64            `db:"seed" json:"seed"`
	TestFraction float64          `db:"test_fraction" json:"test_fraction"`
	Config       json.RawMessage  `db:"config" json:"config"`
	Reports      json.RawMessage  `db:"reports" json:"reports"`
	Failures     json.RawMessage  `db:"failures" json:"failures,omitempty"`
	CreatedAt    core.Timestamp   `db:"created_at" json:"created_at"`
}

// RunRepository persists completed audit runs. Persistence is best-effort
// from the pipeline's point of view: a write failure never fails a run.
type RunRepository interface {
	Save(ctx context.Context, run StoredRun) error
	Get(ctx context.Context, id core.RunID) (*StoredRun, error)
	ListRecent(ctx context.Context, limit int) ([]StoredRun, error)
}
