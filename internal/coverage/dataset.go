package coverage

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
)

// ArtifactLoader reads the two generated artifacts.
type ArtifactLoader interface {
	LoadAvailability() (domain.Table, []byte, error)
	LoadGeometry() (geo.FeatureCollection, []byte, error)
}

// Dataset is the read-only view of both artifacts the API serves from.
type Dataset struct {
	Table       domain.Table
	Fingerprint string
	Geometry    []byte // geometry artifact as stored
	ZIPs        []string
	Shapes      []*geo.Shape
	Index       *geo.Index
}

// LoadDataset reads both artifacts and builds the spatial index.
func LoadDataset(l ArtifactLoader) (*Dataset, error) {
	table, tableRaw, err := l.LoadAvailability()
	if err != nil {
		return nil, err
	}
	fc, geomRaw, err := l.LoadGeometry()
	if err != nil {
		return nil, err
	}
	return NewDataset(table, tableRaw, fc, geomRaw)
}

// NewDataset builds a dataset from parsed artifacts. tableRaw versions the
// rendered report cache.
func NewDataset(table domain.Table, tableRaw []byte, fc geo.FeatureCollection, geomRaw []byte) (*Dataset, error) {
	shapes, err := geo.Shapes(fc)
	if err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}

	zips := fc.ZIPs()
	slices.Sort(zips)
	zips = slices.Compact(zips)

	return &Dataset{
		Table:       table,
		Fingerprint: domain.Fingerprint(tableRaw),
		Geometry:    geomRaw,
		ZIPs:        zips,
		Shapes:      shapes,
		Index:       geo.NewIndex(shapes),
	}, nil
}
