// Package coverage answers availability questions over the loaded artifacts
// and the current brand selection.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/observability"
	"github.com/couchcryptid/zip-coverage/internal/report"
	"github.com/couchcryptid/zip-coverage/internal/selection"
)

var (
	// ErrNotReady is returned until both artifacts have been loaded.
	ErrNotReady = errors.New("coverage artifacts not loaded")

	// ErrExportDisabled is returned for report downloads when the export panel is off.
	ErrExportDisabled = errors.New("report export is disabled")

	// ErrNoZIP is returned when no ZIP boundary contains a point.
	ErrNoZIP = errors.New("no zip contains the point")
)

// LookupResult is the paint answer for one ZIP under one brand.
type LookupResult struct {
	Brand   domain.Brand   `json:"brand,omitempty"`
	ZIP     string         `json:"zip"`
	Outcome domain.Outcome `json:"outcome"`
	Style   domain.Style   `json:"style"`
}

// SelectionView is a selection snapshot with the styles it paints.
type SelectionView struct {
	State  selection.State         `json:"state"`
	Effect selection.Effect        `json:"effect,omitempty"`
	Styles map[string]domain.Style `json:"styles"`
}

// Report is a rendered brand report.
type Report struct {
	FileName string
	PDF      []byte
}

// Service owns the loaded dataset and the selection state.
type Service struct {
	data     atomic.Pointer[Dataset]
	sel      *selection.Holder
	renderer report.Renderer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a service with no dataset loaded.
func NewService(sel *selection.Holder, renderer report.Renderer, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		sel:      sel,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger,
	}
}

// SetDataset installs the dataset the service answers from.
func (s *Service) SetDataset(d *Dataset) {
	s.data.Store(d)
	s.logger.Info("coverage dataset loaded",
		"zips", len(d.ZIPs),
		"shapes", d.Index.Len(),
		"entries", d.Table.Len(),
		"fingerprint", d.Fingerprint,
	)
}

// CheckReadiness reports whether a dataset is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.data.Load() == nil {
		return ErrNotReady
	}
	return nil
}

func (s *Service) dataset() (*Dataset, error) {
	d := s.data.Load()
	if d == nil {
		return nil, ErrNotReady
	}
	return d, nil
}

// Brands returns the catalog entries the user can currently select.
func (s *Service) Brands() []domain.BrandInfo {
	return domain.Catalog(s.sel.Load().Visible())
}

// Geometry returns the geometry artifact as stored.
func (s *Service) Geometry() ([]byte, error) {
	d, err := s.dataset()
	if err != nil {
		return nil, err
	}
	return d.Geometry, nil
}

// Lookup returns the outcome and style for zip under brand.
func (s *Service) Lookup(brand domain.Brand, zip string) (LookupResult, error) {
	if !brand.Valid() {
		return LookupResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, brand)
	}
	d, err := s.dataset()
	if err != nil {
		return LookupResult{}, err
	}
	outcome := domain.Lookup(d.Table, brand, zip)
	s.metrics.Lookups.WithLabelValues(string(outcome)).Inc()
	return LookupResult{Brand: brand, ZIP: zip, Outcome: outcome, Style: domain.StyleFor(outcome)}, nil
}

// Styles paints every geometry ZIP for brand.
func (s *Service) Styles(brand domain.Brand) (map[string]domain.Style, error) {
	if !brand.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, brand)
	}
	d, err := s.dataset()
	if err != nil {
		return nil, err
	}
	return domain.Paint(d.Table, brand, d.ZIPs), nil
}

// Partition returns the brand's available and unavailable ZIPs.
func (s *Service) Partition(brand domain.Brand) (domain.Partition, error) {
	if !brand.Valid() {
		return domain.Partition{}, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, brand)
	}
	d, err := s.dataset()
	if err != nil {
		return domain.Partition{}, err
	}
	return domain.PartitionBrand(d.Table, brand), nil
}

// Report renders the brand's PDF report.
func (s *Service) Report(brand domain.Brand) (Report, error) {
	if !s.sel.Load().Variant().ExportPanel {
		return Report{}, ErrExportDisabled
	}
	info, ok := domain.Info(brand)
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, brand)
	}
	d, err := s.dataset()
	if err != nil {
		return Report{}, err
	}

	doc, err := s.renderer.Render(report.Input{
		Brand:       info,
		Partition:   domain.PartitionBrand(d.Table, brand),
		Shapes:      d.Shapes,
		Styles:      domain.Paint(d.Table, brand, d.ZIPs),
		GeneratedAt: domain.Now(),
		Version:     d.Fingerprint,
	})
	if err != nil {
		return Report{}, err
	}
	return Report{FileName: report.FileName(info.Name), PDF: doc}, nil
}

// Selection returns the current selection and its paint.
func (s *Service) Selection() (SelectionView, error) {
	return s.view(s.sel.Load(), "")
}

// Toggle applies a brand selection transition.
func (s *Service) Toggle(brand domain.Brand) (SelectionView, error) {
	st, effect, err := s.sel.Apply(func(cur selection.State) (selection.State, selection.Effect, error) {
		return cur.Select(brand)
	})
	if err != nil {
		return SelectionView{}, err
	}
	s.logger.Debug("selection changed", "brand", brand, "effect", effect)
	return s.view(st, effect)
}

// SetFilter replaces the visible brand set.
func (s *Service) SetFilter(brands []domain.Brand) (SelectionView, error) {
	st, effect, err := s.sel.Apply(func(cur selection.State) (selection.State, selection.Effect, error) {
		return cur.SetFilter(brands)
	})
	if err != nil {
		return SelectionView{}, err
	}
	s.logger.Debug("brand filter changed", "brands", brands, "effect", effect)
	return s.view(st, effect)
}

func (s *Service) view(st selection.State, effect selection.Effect) (SelectionView, error) {
	d, err := s.dataset()
	if err != nil {
		return SelectionView{}, err
	}
	active, _ := st.Active()
	return SelectionView{State: st, Effect: effect, Styles: domain.Paint(d.Table, active, d.ZIPs)}, nil
}

// Locate finds the ZIP containing a point and, when a brand is given or
// selected, its availability.
func (s *Service) Locate(lat, lon float64, brand domain.Brand) (LookupResult, error) {
	d, err := s.dataset()
	if err != nil {
		return LookupResult{}, err
	}
	if brand == "" {
		brand, _ = s.sel.Load().Active()
	}
	if brand != "" && !brand.Valid() {
		return LookupResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, brand)
	}

	zip, ok := d.Index.Locate(lat, lon)
	if !ok {
		return LookupResult{}, fmt.Errorf("%w: %.5f,%.5f", ErrNoZIP, lat, lon)
	}
	if brand == "" {
		return LookupResult{ZIP: zip, Outcome: domain.OutcomeUnknown, Style: domain.NeutralStyle}, nil
	}
	return s.Lookup(brand, zip)
}
