// Package testkit provides the in-memory adapters and synthetic fixtures
// that tests and the no-database dev mode run against.
package testkit

import (
	"context"
	"sync"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/ports"
)

// Kit bundles the fake adapters for one test or dev session. The same
// repository instance backs every accessor so assertions see what the
// pipeline wrote.
type Kit struct {
	repo *InMemoryRunRepository
}

// NewKit creates a kit with an empty in-memory run repository.
func NewKit() *Kit {
	return &Kit{repo: NewInMemoryRunRepository()}
}

// RunRepository returns the shared in-memory repository.
func (k *Kit) RunRepository() *InMemoryRunRepository {
	return k.repo
}

// TableSource returns a static source serving n synthetic census rows.
func (k *Kit) TableSource(rows int) ports.TableSource {
	return NewStaticSource("synthetic://adult", SyntheticRows(rows))
}

// InMemoryRunRepository implements ports.RunRepository with map storage.
// Safe for concurrent use.
type InMemoryRunRepository struct {
	runs  map[core.RunID]ports.StoredRun
	order []core.RunID
	mu    sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{
		runs: make(map[core.RunID]ports.StoredRun),
	}
}

// Save upserts the run, mirroring the postgres ON CONFLICT behavior.
func (r *InMemoryRunRepository) Save(ctx context.Context, run ports.StoredRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; !exists {
		r.order = append(r.order, run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *InMemoryRunRepository) Get(ctx context.Context, id core.RunID) (*ports.StoredRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, core.NewNotFoundError("audit run", id.String())
	}
	return &run, nil
}

// ListRecent returns runs newest-first by insertion order.
func (r *InMemoryRunRepository) ListRecent(ctx context.Context, limit int) ([]ports.StoredRun, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]ports.StoredRun, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, r.runs[r.order[i]])
	}
	return runs, nil
}

// Count returns the number of stored runs.
func (r *InMemoryRunRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}

// FailingRunRepository implements ports.RunRepository by returning Err from
// every method, for exercising best-effort persistence paths.
type FailingRunRepository struct {
	Err error
}

func (r *FailingRunRepository) Save(ctx context.Context, run ports.StoredRun) error {
	return r.Err
}

func (r *FailingRunRepository) Get(ctx context.Context, id core.RunID) (*ports.StoredRun, error) {
	return nil, r.Err
}

func (r *FailingRunRepository) ListRecent(ctx context.Context, limit int) ([]ports.StoredRun, error) {
	return nil, r.Err
}

// StaticSource implements ports.TableSource with canned rows. Fetch never
// touches the network, so dev mode and tests stay hermetic.
type StaticSource struct {
	location string
	rows     [][]string
	err      error
}

func NewStaticSource(location string, rows [][]string) *StaticSource {
	return &StaticSource{location: location, rows: rows}
}

// NewFailingSource returns a source whose Fetch always fails, for fallback
// chain tests.
func NewFailingSource(location string, err error) *StaticSource {
	return &StaticSource{location: location, err: err}
}

func (s *StaticSource) Fetch(ctx context.Context) ([][]string, dataset.Origin, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataset.Origin{}, err
	}
	if s.err != nil {
		return nil, dataset.Origin{}, s.err
	}
	return s.rows, dataset.Origin{Kind: dataset.OriginFallback, Location: s.location}, nil
}

func (s *StaticSource) Location() string {
	return s.location
}
