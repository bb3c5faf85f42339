package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Brand is a lower-cased brand code.
type Brand string

const (
	BrandHWC Brand = "hwc"
	BrandMSE Brand = "mse"
	BrandMSQ Brand = "msq"
	BrandTCA Brand = "tca"
)

// Brands lists every brand code in display order.
var Brands = []Brand{BrandHWC, BrandMSE, BrandMSQ, BrandTCA}

// ErrUnknownBrand is returned when a code is not one of Brands.
var ErrUnknownBrand = errors.New("unknown brand")

// ParseBrand normalizes a brand code ("HWC", " hwc ") and rejects unknown codes.
func ParseBrand(s string) (Brand, error) {
	b := Brand(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBrand, s)
	}
	return b, nil
}

// Valid reports whether b is one of the fixed brand codes.
func (b Brand) Valid() bool {
	switch b {
	case BrandHWC, BrandMSE, BrandMSQ, BrandTCA:
		return true
	}
	return false
}

// BrandInfo is the display metadata for a brand.
type BrandInfo struct {
	Code Brand  `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}

//go:embed brands.yaml
var catalogYAML []byte

var catalog = mustLoadCatalog(catalogYAML)

func mustLoadCatalog(data []byte) map[Brand]BrandInfo {
	c, err := loadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

func loadCatalog(data []byte) (map[Brand]BrandInfo, error) {
	var doc struct {
		Brands []BrandInfo `yaml:"brands"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse brand catalog: %w", err)
	}
	out := make(map[Brand]BrandInfo, len(doc.Brands))
	for _, info := range doc.Brands {
		if !info.Code.Valid() {
			return nil, fmt.Errorf("brand catalog: %w: %q", ErrUnknownBrand, info.Code)
		}
		out[info.Code] = info
	}
	for _, b := range Brands {
		if _, ok := out[b]; !ok {
			return nil, fmt.Errorf("brand catalog: missing entry for %q", b)
		}
	}
	return out, nil
}

// Info returns catalog metadata for b.
func Info(b Brand) (BrandInfo, bool) {
	info, ok := catalog[b]
	return info, ok
}

// Catalog returns metadata for the given brands in order, skipping unknown codes.
func Catalog(brands []Brand) []BrandInfo {
	out := make([]BrandInfo, 0, len(brands))
	for _, b := range brands {
		if info, ok := catalog[b]; ok {
			out = append(out, info)
		}
	}
	return out
}
