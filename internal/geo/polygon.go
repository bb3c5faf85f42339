package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedGeometry is returned for geometry types other than Polygon and MultiPolygon.
var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// Point is a WGS84 coordinate.
type Point struct {
	Lon float64
	Lat float64
}

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// EmptyBBox returns a box that any Extend call will replace.
func EmptyBBox() BBox {
	return BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
}

// Empty reports whether the box has never been extended.
func (b BBox) Empty() bool { return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat }

// Extend grows the box to include p.
func (b BBox) Extend(p Point) BBox {
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	return b
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	if o.Empty() {
		return b
	}
	return b.Extend(Point{Lon: o.MinLon, Lat: o.MinLat}).Extend(Point{Lon: o.MaxLon, Lat: o.MaxLat})
}

// Contains reports whether p lies inside or on the box.
func (b BBox) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Polygon is an outer ring followed by zero or more holes.
type Polygon struct {
	Rings [][]Point
	BBox  BBox
}

// Contains applies the even-odd rule: inside the outer ring and not inside any hole.
func (p Polygon) Contains(pt Point) bool {
	if len(p.Rings) == 0 || !p.BBox.Contains(pt) {
		return false
	}
	if !ringContains(p.Rings[0], pt) {
		return false
	}
	for _, hole := range p.Rings[1:] {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

func ringContains(ring []Point, pt Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) &&
			pt.Lon < (b.Lon-a.Lon)*(pt.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}
	return inside
}

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry decodes a Polygon or MultiPolygon. A null geometry yields no polygons.
func ParseGeometry(raw json.RawMessage) ([]Polygon, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var g rawGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode polygon: %w", err)
		}
		return []Polygon{newPolygon(coords)}, nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode multipolygon: %w", err)
		}
		polys := make([]Polygon, 0, len(coords))
		for _, part := range coords {
			polys = append(polys, newPolygon(part))
		}
		return polys, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}
}

func newPolygon(coords [][][]float64) Polygon {
	p := Polygon{Rings: make([][]Point, 0, len(coords)), BBox: EmptyBBox()}
	for _, ring := range coords {
		pts := make([]Point, 0, len(ring))
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			pt := Point{Lon: c[0], Lat: c[1]}
			pts = append(pts, pt)
			p.BBox = p.BBox.Extend(pt)
		}
		p.Rings = append(p.Rings, pts)
	}
	return p
}
