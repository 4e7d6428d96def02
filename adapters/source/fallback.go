package source

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/ports"
)

// Chain tries each source in order and serves the first that succeeds. Both
// sources must parse to the same schema, so the caller never sees which one
// answered except through the dataset origin.
type Chain struct {
	sources []ports.TableSource
}

func NewChain(sources ...ports.TableSource) *Chain {
	return &Chain{sources: sources}
}

func (c *Chain) Location() string {
	locations := make([]string, len(c.sources))
	for i, s := range c.sources {
		locations[i] = s.Location()
	}
	return strings.Join(locations, " -> ")
}

// Fetch walks the chain. When every source fails the error names each
// attempted location and how to remediate by hand.
func (c *Chain) Fetch(ctx context.Context) ([][]string, dataset.Origin, error) {
	if len(c.sources) == 0 {
		return nil, dataset.Origin{}, fmt.Errorf("no sources configured")
	}

	locations := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		rows, origin, err := s.Fetch(ctx)
		if err == nil {
			return rows, origin, nil
		}
		log.Printf("[DatasetSource] %s failed: %v", s.Location(), err)
		locations = append(locations, s.Location())
	}

	last := c.sources[len(c.sources)-1]
	hint := fmt.Sprintf("place the source file at %s manually", last.Location())
	return nil, dataset.Origin{}, core.NewDataUnavailableError(locations, hint)
}
