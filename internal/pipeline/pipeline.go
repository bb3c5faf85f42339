// Package pipeline runs the offline ingestion jobs: ledger to availability
// artifact, ledger to boundary artifact, and ledger to Kafka.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
	"github.com/couchcryptid/zip-coverage/internal/observability"
)

// LedgerSource opens the availability ledger.
type LedgerSource interface {
	OpenLedger() (io.ReadCloser, error)
}

// AvailabilitySink persists the availability table.
type AvailabilitySink interface {
	SaveAvailability(t domain.Table) error
}

// GeometrySink persists the ZIP geometry collection.
type GeometrySink interface {
	SaveGeometry(fc geo.FeatureCollection) error
}

// BoundarySource fetches boundary features for one batch of ZIPs.
type BoundarySource interface {
	QueryZIPs(ctx context.Context, zips []string) ([]geo.Feature, error)
}

// RecordPublisher emits availability records downstream.
type RecordPublisher interface {
	Publish(ctx context.Context, records []domain.Record) error
}

// Options control ledger strictness and boundary batching.
type Options struct {
	Strict    bool
	BatchSize int
}

// Pipeline wires the ledger to the three ingestion jobs.
type Pipeline struct {
	ledger    LedgerSource
	strict    bool
	batchSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline reading from ledger.
func New(ledger LedgerSource, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		ledger:    ledger,
		strict:    opts.Strict,
		batchSize: opts.BatchSize,
		logger:    logger,
		metrics:   metrics,
	}
}

// Extract scans the ledger. Diagnostics are logged; in strict mode any
// diagnostic fails the extraction.
func (p *Pipeline) Extract(ctx context.Context) (domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}

	rc, err := p.ledger.OpenLedger()
	if err != nil {
		return domain.Extraction{}, err
	}
	defer rc.Close()

	ext, err := domain.ScanLedger(rc)
	if err != nil {
		return domain.Extraction{}, err
	}

	for kind, n := range ext.Counts {
		p.metrics.LedgerLines.WithLabelValues(kind.String()).Add(float64(n))
	}
	p.metrics.LedgerDiagnostics.Add(float64(len(ext.Diagnostics)))
	for _, d := range ext.Diagnostics {
		p.logger.Warn("ledger entry skipped", "line", d.Line, "reason", d.Reason, "text", d.Text)
	}

	if p.strict {
		if err := ext.Strict(); err != nil {
			return domain.Extraction{}, err
		}
	}
	return ext, nil
}

// BuildAvailability extracts the ledger and writes the availability artifact.
func (p *Pipeline) BuildAvailability(ctx context.Context, sink AvailabilitySink) (domain.Extraction, error) {
	ext, err := p.Extract(ctx)
	if err != nil {
		return domain.Extraction{}, err
	}
	if err := sink.SaveAvailability(ext.Table); err != nil {
		return domain.Extraction{}, fmt.Errorf("save availability: %w", err)
	}

	p.metrics.AvailabilityZIPs.Set(float64(len(ext.Table.ZIPs())))
	p.logger.Info("availability generated",
		"zips", len(ext.ZIPs),
		"entries", ext.Table.Len(),
		"diagnostics", len(ext.Diagnostics),
	)
	return ext, nil
}

// FetchBoundaries extracts the ledger ZIPs, fetches their boundaries and
// writes the geometry artifact. Nothing is written unless every batch succeeds.
func (p *Pipeline) FetchBoundaries(ctx context.Context, src BoundarySource, sink GeometrySink) (BoundaryResult, error) {
	ext, err := p.Extract(ctx)
	if err != nil {
		return BoundaryResult{}, err
	}

	f := NewBoundaryFetcher(src, p.batchSize, p.logger)
	res, err := f.Fetch(ctx, ext.ZIPs)
	if err != nil {
		return BoundaryResult{}, err
	}

	if err := sink.SaveGeometry(res.Collection); err != nil {
		return BoundaryResult{}, fmt.Errorf("save geometry: %w", err)
	}
	p.metrics.BoundaryMissingZIPs.Set(float64(len(res.Missing)))

	p.logger.Info("geometry generated", "features", len(res.Collection.Features), "batches", res.Batches)
	if len(res.Missing) > 0 {
		p.logger.Warn("zips not returned by boundary service", "count", len(res.Missing), "zips", res.Missing)
	}
	return res, nil
}

// Publish extracts the ledger and publishes one record per (brand, zip).
func (p *Pipeline) Publish(ctx context.Context, pub RecordPublisher) (int, error) {
	ext, err := p.Extract(ctx)
	if err != nil {
		return 0, err
	}

	records := domain.Records(ext.Table, domain.Now())
	if err := pub.Publish(ctx, records); err != nil {
		return 0, err
	}
	p.metrics.RecordsPublished.Add(float64(len(records)))

	p.logger.Info("availability published", "records", len(records))
	return len(records), nil
}
