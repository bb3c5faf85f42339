package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
)

func scan(t *testing.T, ledger string) domain.Extraction {
	t.Helper()
	ext, err := domain.ScanLedger(strings.NewReader(ledger))
	require.NoError(t, err)
	return ext
}

func TestValidateAvailability(t *testing.T) {
	ext := scan(t, "43004: Blacklick\nHWC - Available\n")
	raw, err := domain.MarshalTable(ext.Table)
	require.NoError(t, err)

	t.Run("matches", func(t *testing.T) {
		assert.True(t, validateAvailability(ext, ext.Table, raw).passed())
	})

	t.Run("stale", func(t *testing.T) {
		stale := domain.NewTable()
		stale.Set(domain.BrandHWC, "43004", domain.StatusUnavailable)
		staleRaw, err := domain.MarshalTable(stale)
		require.NoError(t, err)

		p := validateAvailability(ext, stale, staleRaw)
		assert.False(t, p.passed())
	})
}

func TestValidateLedger_Strict(t *testing.T) {
	ext := scan(t, "43004: Blacklick\nXYZ - Available\n")
	assert.True(t, validateLedger(ext, false).passed())
	assert.Len(t, validateLedger(ext, true).errors, 1)
}

func TestValidateGeometry(t *testing.T) {
	ext := scan(t, "43004: Blacklick\n43201: Columbus\n")
	square := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)

	ok := geo.NewFeatureCollection([]geo.Feature{
		{Type: "Feature", Geometry: square, Properties: geo.Properties{ZIP: "43004"}},
	})
	assert.True(t, validateGeometry(ext, ok).passed(), "a missing ZIP is only a note")

	stray := geo.NewFeatureCollection([]geo.Feature{
		{Type: "Feature", Geometry: square, Properties: geo.Properties{ZIP: "99999"}},
		{Type: "Feature", Geometry: square},
	})
	assert.Len(t, validateGeometry(ext, stray).errors, 2)
}
