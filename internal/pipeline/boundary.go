package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/zip-coverage/internal/geo"
)

const (
	// DefaultBatchSize is the number of ZIPs per boundary query.
	DefaultBatchSize = 25
	// MaxBatchSize keeps the query's where clause within service limits.
	MaxBatchSize = 200
)

// BoundaryResult is the outcome of a complete boundary fetch.
type BoundaryResult struct {
	Collection geo.FeatureCollection
	Requested  []string
	Missing    []string // requested ZIPs with no feature, in request order
	Batches    int
}

// BoundaryFetcher queries a BoundarySource batch by batch.
type BoundaryFetcher struct {
	source    BoundarySource
	batchSize int
	logger    *slog.Logger
}

// NewBoundaryFetcher creates a fetcher issuing batches of at most batchSize ZIPs.
func NewBoundaryFetcher(source BoundarySource, batchSize int, logger *slog.Logger) *BoundaryFetcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BoundaryFetcher{source: source, batchSize: batchSize, logger: logger}
}

// Fetch requests every ZIP serially in batches. The first failing batch
// aborts the fetch and its error is returned.
func (f *BoundaryFetcher) Fetch(ctx context.Context, zips []string) (BoundaryResult, error) {
	batches := Batches(zips, f.batchSize)
	features := make([]geo.Feature, 0, len(zips))
	returned := make(map[string]struct{}, len(zips))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return BoundaryResult{}, err
		}
		f.logger.Info("fetching boundary batch", "batch", i+1, "of", len(batches), "zips", len(batch))

		got, err := f.source.QueryZIPs(ctx, batch)
		if err != nil {
			return BoundaryResult{}, fmt.Errorf("boundary batch %d/%d: %w", i+1, len(batches), err)
		}
		for _, feat := range got {
			features = append(features, feat)
			if feat.Properties.ZIP != "" {
				returned[feat.Properties.ZIP] = struct{}{}
			}
		}
	}

	missing := []string{}
	for _, z := range zips {
		if _, ok := returned[z]; !ok {
			missing = append(missing, z)
		}
	}

	return BoundaryResult{
		Collection: geo.NewFeatureCollection(features),
		Requested:  zips,
		Missing:    missing,
		Batches:    len(batches),
	}, nil
}

// Batches splits zips into consecutive chunks of at most size elements.
func Batches(zips []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]string, 0, (len(zips)+size-1)/size)
	for start := 0; start < len(zips); start += size {
		end := min(start+size, len(zips))
		out = append(out, zips[start:end])
	}
	return out
}
