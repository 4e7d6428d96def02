package ports

import (
	"context"

	"fairlens/domain/dataset"
)

// TableSource resolves the raw delimited table the pipeline ingests. A source
// performs a single resolution attempt per call; retry and fallback policy
// live in the source chain, caching lives at the orchestration layer.
type TableSource interface {
	// Fetch returns the raw rows in file order plus where they came from.
	Fetch(ctx context.Context) ([][]string, dataset.Origin, error)

	// Location describes the source for DataUnavailable error reporting.
	Location() string
}
