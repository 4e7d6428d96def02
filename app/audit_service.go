package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fairlens/domain/audit"
	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/domain/schema"
	"fairlens/internal/config"
	"fairlens/internal/explain"
	"fairlens/internal/fairness"
	"fairlens/internal/ingest"
	"fairlens/internal/model"
	"fairlens/internal/split"
	"fairlens/internal/transform"
	"fairlens/ports"
)

const (
	defaultPreviewLimit = 50
	maxPreviewLimit     = 500
)

// AuditService orchestrates the pipeline end to end: source, clean, split,
// encode, train, evaluate. It owns the run result cache and the loaded
// dataset; every pipeline component below it stays stateless.
type AuditService struct {
	source   ports.TableSource
	repo     ports.RunRepository
	table    schema.Table
	pipeline config.PipelineConfig
	models   config.ModelConfig

	flight singleflight.Group

	mu          sync.RWMutex
	dataset     *dataset.Dataset
	cleanReport ingest.Report
	runs        map[core.RunKey]*AuditRun
	byID        map[core.RunID]*AuditRun
	history     []*AuditRun
}

// NewAuditService creates the orchestrator. A nil repository disables
// persistence; runs then live only in the cache.
func NewAuditService(source ports.TableSource, repo ports.RunRepository, table schema.Table, pipeline config.PipelineConfig, models config.ModelConfig) *AuditService {
	return &AuditService{
		source:   source,
		repo:     repo,
		table:    table,
		pipeline: pipeline,
		models:   models,
		runs:     make(map[core.RunKey]*AuditRun),
		byID:     make(map[core.RunID]*AuditRun),
	}
}

// runParams is a fully resolved request: defaults applied, everything
// validated.
type runParams struct {
	fraction float64
	config   model.Config
}

func (s *AuditService) resolve(req RunRequest) (runParams, error) {
	p := runParams{
		fraction: s.pipeline.TestFraction,
		config: model.Config{
			Seed:           s.pipeline.Seed,
			TreeCount:      s.models.EnsembleTreeCount,
			MaxDepth:       s.models.EnsembleMaxDepth,
			Regularization: s.models.LinearRegularizationStrength,
		},
	}
	if req.Seed != nil {
		p.config.Seed = *req.Seed
	}
	if req.TestFraction != nil {
		p.fraction = *req.TestFraction
	}
	if req.TreeCount != nil {
		p.config.TreeCount = *req.TreeCount
	}
	if req.MaxDepth != nil {
		p.config.MaxDepth = *req.MaxDepth
	}
	if req.Regularization != nil {
		p.config.Regularization = *req.Regularization
	}

	if p.fraction <= 0 || p.fraction >= 1 {
		return runParams{}, core.NewInvalidParameterError("test_fraction", fmt.Sprintf("must be in (0,1), got %v", p.fraction))
	}
	if err := p.config.Validate(); err != nil {
		return runParams{}, err
	}
	return p, nil
}

func (p runParams) cacheKey(fingerprint core.Fingerprint) core.RunKey {
	parts := append([]string{fmt.Sprintf("fraction=%g", p.fraction)}, p.config.Key()...)
	return core.ComputeRunKey(fingerprint, parts...)
}

// Run answers from the cache when the dataset, seed, fraction and model
// config all match a completed run; otherwise it executes the pipeline.
// Concurrent misses on one key collapse to a single computation.
func (s *AuditService) Run(ctx context.Context, req RunRequest) (*AuditRun, error) {
	p, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	ds, cleanRep, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	key := p.cacheKey(ds.Fingerprint())
	if run := s.cachedRun(key); run != nil {
		return run, nil
	}

	v, err, _ := s.flight.Do(key.String(), func() (interface{}, error) {
		if run := s.cachedRun(key); run != nil {
			return run, nil
		}
		return s.compute(ctx, key, ds, cleanRep, p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AuditRun), nil
}

func (s *AuditService) cachedRun(key core.RunKey) *AuditRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[key]
}

// loadDataset fetches and cleans the source table once per service lifetime.
// A failed attempt is not cached; the next request retries the source chain.
func (s *AuditService) loadDataset(ctx context.Context) (*dataset.Dataset, ingest.Report, error) {
	s.mu.RLock()
	if s.dataset != nil {
		ds, report := s.dataset, s.cleanReport
		s.mu.RUnlock()
		return ds, report, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.flight.Do("dataset", func() (interface{}, error) {
		s.mu.RLock()
		if s.dataset != nil {
			ds := s.dataset
			s.mu.RUnlock()
			return ds, nil
		}
		s.mu.RUnlock()

		rows, origin, err := s.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}

		cleaner, err := ingest.NewCleaner(s.table, ingest.Config{
			MinRows:      s.pipeline.MinRows,
			TrimOutliers: s.pipeline.TrimOutliers,
		})
		if err != nil {
			return nil, err
		}
		ds, report, err := cleaner.Clean(rows, origin)
		if err != nil {
			return nil, err
		}

		log.Printf("[AuditService] Dataset ready: %d rows kept, %d dropped (%s %s)",
			report.RowsOut, report.Dropped(), origin.Kind, origin.Location)

		s.mu.Lock()
		s.dataset = ds
		s.cleanReport = report
		s.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, ingest.Report{}, err
	}

	ds := v.(*dataset.Dataset)
	s.mu.RLock()
	report := s.cleanReport
	s.mu.RUnlock()
	return ds, report, nil
}

// compute executes the pipeline once for a resolved parameter set. Training
// and evaluation failures are isolated per family; the run fails only when no
// family survives to a report.
func (s *AuditService) compute(ctx context.Context, key core.RunKey, ds *dataset.Dataset, cleanRep ingest.Report, p runParams) (*AuditRun, error) {
	start := time.Now()

	sp, err := split.Stratified(ds, p.fraction, p.config.Seed)
	if err != nil {
		return nil, err
	}

	fitted, err := transform.Fit(ds.Schema(), sp.Train)
	if err != nil {
		return nil, err
	}
	trainX, err := fitted.Apply(sp.Train)
	if err != nil {
		return nil, err
	}
	testX, err := fitted.Apply(sp.Test)
	if err != nil {
		return nil, err
	}
	trainY := labelsOf(sp.Train)
	testY := labelsOf(sp.Test)
	testGroups := groupsOf(sp.Test)

	results := model.TrainAll(ctx, p.config, trainX, trainY)

	// Surviving families evaluate concurrently, one slot each.
	reports := make([]*audit.Report, len(results))
	evalErrs := make([]error, len(results))
	var wg sync.WaitGroup
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		wg.Add(1)
		go func(slot int, clf ports.Classifier) {
			defer wg.Done()
			reports[slot], evalErrs[slot] = fairness.Evaluate(clf, testX, testY, testGroups)
		}(i, res.Classifier)
	}
	wg.Wait()

	run := &AuditRun{
		ID:           core.NewRunID(),
		Fingerprint:  ds.Fingerprint(),
		Seed:         p.config.Seed,
		TestFraction: p.fraction,
		ModelConfig:  p.config,
		CleanReport:  cleanRep,
		TrainSize:    sp.TrainSize(),
		TestSize:     sp.TestSize(),
		FeatureNames: fitted.FeatureNames(),
		CreatedAt:    core.Now(),
		Dataset:      ds,
		Transform:    fitted,
	}

	var firstErr error
	for i, res := range results {
		switch {
		case res.Err != nil:
			run.Failures = append(run.Failures, TrainingFailure{Family: res.Family, Error: res.Err.Error()})
			if firstErr == nil {
				firstErr = res.Err
			}
		case evalErrs[i] != nil:
			run.Failures = append(run.Failures, TrainingFailure{Family: res.Family, Error: evalErrs[i].Error()})
			if firstErr == nil {
				firstErr = evalErrs[i]
			}
		default:
			run.Reports = append(run.Reports, *reports[i])
			run.Models = append(run.Models, model.Trained{
				Family:       res.Family,
				Hyper:        p.config,
				FeatureNames: fitted.FeatureNames(),
				Duration:     res.Duration,
				Classifier:   res.Classifier,
			})
		}
	}

	if len(run.Reports) == 0 {
		return nil, fmt.Errorf("no model family survived: %w", firstErr)
	}

	run.DurationMs = time.Since(start).Milliseconds()

	s.mu.Lock()
	s.runs[key] = run
	s.byID[run.ID] = run
	s.history = append(s.history, run)
	s.mu.Unlock()

	log.Printf("[AuditService] ✅ Run %s complete in %dms (%d reports, %d failures)",
		run.ID, run.DurationMs, len(run.Reports), len(run.Failures))

	s.persist(ctx, run)
	return run, nil
}

// persist writes the run through to the repository. Failures log a warning
// and nothing else: the in-memory result is already authoritative.
func (s *AuditService) persist(ctx context.Context, run *AuditRun) {
	if s.repo == nil {
		return
	}
	stored, err := storedProjection(run)
	if err != nil {
		log.Printf("[AuditService] Warning: could not encode run %s for storage: %v", run.ID, err)
		return
	}
	if err := s.repo.Save(ctx, stored); err != nil {
		log.Printf("[AuditService] Warning: could not persist run %s: %v", run.ID, err)
	}
}

func storedProjection(run *AuditRun) (ports.StoredRun, error) {
	configJSON, err := json.Marshal(run.ModelConfig)
	if err != nil {
		return ports.StoredRun{}, err
	}
	reportsJSON, err := json.Marshal(run.Reports)
	if err != nil {
		return ports.StoredRun{}, err
	}
	stored := ports.StoredRun{
		ID:           run.ID,
		Fingerprint:  run.Fingerprint,
		Seed:         run.Seed,
		TestFraction: run.TestFraction,
		Config:       configJSON,
		Reports:      reportsJSON,
		CreatedAt:    run.CreatedAt,
	}
	if len(run.Failures) > 0 {
		failuresJSON, err := json.Marshal(run.Failures)
		if err != nil {
			return ports.StoredRun{}, err
		}
		stored.Failures = failuresJSON
	}
	return stored, nil
}

// Latest returns the most recently completed run.
func (s *AuditService) Latest() (*AuditRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return nil, core.ErrRunNotFound
	}
	return s.history[len(s.history)-1], nil
}

// Get returns one run by ID.
func (s *AuditService) Get(id core.RunID) (*AuditRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.byID[id]
	if !ok {
		return nil, core.NewNotFoundError("audit run", id.String())
	}
	return run, nil
}

// Runs returns completed runs newest-first.
func (s *AuditService) Runs() []*AuditRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*AuditRun, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// Explain formats the run's fairness signal into the narrative view.
func (s *AuditService) Explain(id core.RunID) (*Explanation, error) {
	run, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	summaries := run.Summaries()
	return &Explanation{
		RunID:     run.ID,
		Summaries: summaries,
		Narrative: explain.Narrative(summaries),
	}, nil
}

// Features returns the trained feature order plus linear coefficients.
func (s *AuditService) Features(id core.RunID) (*FeatureView, error) {
	run, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	view := &FeatureView{RunID: run.ID, FeatureNames: run.FeatureNames}
	for _, m := range run.Models {
		if weights, intercept, ok := m.Coefficients(); ok {
			view.Coefficients = weights
			b := intercept
			view.Intercept = &b
		}
	}
	return view, nil
}

// Preview returns one window of the run's cleaned records.
func (s *AuditService) Preview(id core.RunID, offset, limit int) (*DatasetPage, error) {
	run, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	records := run.Dataset.Records()
	total := len(records)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &DatasetPage{
		RunID:   run.ID,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		Records: records[offset:end],
	}, nil
}

func labelsOf(records []dataset.Record) []int {
	labels := make([]int, len(records))
	for i, rec := range records {
		labels[i] = rec.Label
	}
	return labels
}

func groupsOf(records []dataset.Record) []string {
	groups := make([]string, len(records))
	for i, rec := range records {
		groups[i] = rec.Group
	}
	return groups
}
