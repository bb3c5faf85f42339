package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLocation is returned for searches outside the demo coverage area.
var ErrUnsupportedLocation = errors.New("only columbus is supported")

// Location is a search result the map can fly to.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// Columbus is the only searchable location.
var Columbus = Location{Name: "Columbus, Ohio", Lat: 39.9612, Lon: -82.9988, Zoom: 11}

// ResolveLocation maps free-text search input to a location. Anything starting
// with "columbus" (case-insensitive) resolves to Columbus.
func ResolveLocation(q string) (Location, error) {
	v := strings.ToLower(strings.TrimSpace(q))
	if v == "" {
		return Location{}, fmt.Errorf("%w: empty query", ErrUnsupportedLocation)
	}
	if strings.HasPrefix(v, "columbus") {
		return Columbus, nil
	}
	return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedLocation, q)
}

// SuggestLocations returns autocomplete suggestions once the input has at
// least three characters.
func SuggestLocations(q string) []string {
	v := strings.ToLower(strings.TrimSpace(q))
	if len(v) >= 3 && strings.HasPrefix(v, "col") {
		return []string{Columbus.Name}
	}
	return []string{}
}
