package geo

import (
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"
)

const pointTolerance = 1e-9

// Shape is the parsed boundary of one ZIP.
type Shape struct {
	ZIP      string
	Polygons []Polygon
	BBox     BBox
	rect     rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (s *Shape) Bounds() rtreego.Rect { return s.rect }

// Contains reports whether any of the shape's polygons contains pt.
func (s *Shape) Contains(pt Point) bool {
	for _, p := range s.Polygons {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

// Shapes parses every feature with a zip and a polygonal geometry. Features
// sharing a ZIP are merged into one shape.
func Shapes(fc FeatureCollection) ([]*Shape, error) {
	byZIP := make(map[string]*Shape)
	var order []string
	for i, f := range fc.Features {
		zip := f.Properties.ZIP
		if zip == "" {
			continue
		}
		polys, err := ParseGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (zip %s): %w", i, zip, err)
		}
		if len(polys) == 0 {
			continue
		}
		s, ok := byZIP[zip]
		if !ok {
			s = &Shape{ZIP: zip, BBox: EmptyBBox()}
			byZIP[zip] = s
			order = append(order, zip)
		}
		for _, p := range polys {
			s.Polygons = append(s.Polygons, p)
			s.BBox = s.BBox.Union(p.BBox)
		}
	}

	shapes := make([]*Shape, 0, len(order))
	for _, zip := range order {
		s := byZIP[zip]
		if s.BBox.Empty() {
			continue
		}
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{s.BBox.MinLon, s.BBox.MinLat},
			rtreego.Point{s.BBox.MaxLon, s.BBox.MaxLat},
		)
		if err != nil {
			return nil, fmt.Errorf("bounds for zip %s: %w", zip, err)
		}
		s.rect = rect
		shapes = append(shapes, s)
	}
	return shapes, nil
}

// Extent returns the bounding box of all shapes.
func Extent(shapes []*Shape) BBox {
	b := EmptyBBox()
	for _, s := range shapes {
		b = b.Union(s.BBox)
	}
	return b
}

// Index answers point-in-ZIP queries over an R-tree of shape bounds.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over shapes.
func NewIndex(shapes []*Shape) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, s := range shapes {
		tree.Insert(s)
	}
	return &Index{tree: tree, size: len(shapes)}
}

// Len returns the number of indexed shapes.
func (ix *Index) Len() int { return ix.size }

// Locate returns the ZIP whose boundary contains the point. When boundaries
// overlap the lowest ZIP wins.
func (ix *Index) Locate(lat, lon float64) (string, bool) {
	pt := Point{Lon: lon, Lat: lat}
	candidates := ix.tree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(pointTolerance))

	var hits []string
	for _, c := range candidates {
		s := c.(*Shape)
		if s.Contains(pt) {
			hits = append(hits, s.ZIP)
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	return slices.Min(hits), true
}
