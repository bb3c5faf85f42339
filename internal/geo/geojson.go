// Package geo holds the GeoJSON shapes exchanged with the boundary service,
// the polygon model used for point lookups and the spatial index over ZIPs.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotFeatureCollection is returned when a payload is not a GeoJSON FeatureCollection.
var ErrNotFeatureCollection = errors.New("not a FeatureCollection")

const (
	typeFeatureCollection = "FeatureCollection"
	typeFeature           = "Feature"
)

// FeatureCollection is the persisted ZIP geometry artifact.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a collection. A nil slice becomes empty.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: typeFeatureCollection, Features: features}
}

// Feature is one ZIP boundary. Geometry is kept exactly as the service sent it.
type Feature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Properties is the only property set a persisted feature carries.
type Properties struct {
	ZIP string `json:"zip"`
}

// ZIPs returns the non-empty zip property of every feature, in order.
func (fc FeatureCollection) ZIPs() []string {
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Properties.ZIP != "" {
			out = append(out, f.Properties.ZIP)
		}
	}
	return out
}

// SourceFeature is a feature as returned by the boundary service, with its
// original properties.
type SourceFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type sourceCollection struct {
	Type     string          `json:"type"`
	Features []SourceFeature `json:"features"`
}

// DecodeSourceCollection reads a service response. Numbers in properties are
// kept as json.Number so they can be rendered as their decimal text.
func DecodeSourceCollection(r io.Reader) ([]SourceFeature, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var sc sourceCollection
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode geojson: trailing data after feature collection")
	}
	if sc.Type != typeFeatureCollection {
		return nil, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, sc.Type)
	}
	return sc.Features, nil
}

// DecodeFeatureCollection parses a persisted geometry artifact.
func DecodeFeatureCollection(data []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("decode geometry: %w", err)
	}
	if fc.Type != typeFeatureCollection {
		return FeatureCollection{}, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, fc.Type)
	}
	return fc, nil
}

// NormalizeFeature replaces the feature's properties with {zip}, taken from
// zipField and trimmed. Geometry and id pass through untouched.
func NormalizeFeature(src SourceFeature, zipField string) Feature {
	typ := src.Type
	if typ == "" {
		typ = typeFeature
	}
	return Feature{
		Type:       typ,
		ID:         src.ID,
		Geometry:   src.Geometry,
		Properties: Properties{ZIP: strings.TrimSpace(propertyText(src.Properties[zipField]))},
	}
}

func propertyText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
