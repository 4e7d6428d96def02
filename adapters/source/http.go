// Package source resolves the raw audit table from a remote location with a
// local-file fallback.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"fairlens/domain/dataset"
)

// HTTPClient is the slice of *http.Client the remote source needs, injectable
// for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteCSV fetches a delimited table over HTTP. A single attempt per Fetch;
// retry policy belongs to the fallback chain, not here.
type RemoteCSV struct {
	url     string
	timeout time.Duration
	client  HTTPClient
}

func NewRemoteCSV(url string, timeout time.Duration) *RemoteCSV {
	return NewRemoteCSVWithClient(url, timeout, &http.Client{})
}

func NewRemoteCSVWithClient(url string, timeout time.Duration, client HTTPClient) *RemoteCSV {
	return &RemoteCSV{url: url, timeout: timeout, client: client}
}

func (s *RemoteCSV) Location() string { return s.url }

// Fetch downloads and parses the table. Any failure (timeout, HTTP status,
// malformed payload, empty payload) is returned for the chain to act on.
func (s *RemoteCSV) Fetch(ctx context.Context) ([][]string, dataset.Origin, error) {
	origin := dataset.Origin{Kind: dataset.OriginRemote, Location: s.url}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, origin, fmt.Errorf("build request for %s: %w", s.url, err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, origin, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, origin, fmt.Errorf("fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, origin, fmt.Errorf("parse %s: %w", s.url, err)
	}
	if len(rows) == 0 {
		return nil, origin, fmt.Errorf("fetch %s: empty payload", s.url)
	}

	log.Printf("[DatasetSource] Remote table fetched in %.2fms (%d rows)", float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, origin, nil
}
