package geo

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSourceCollection(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":7,"geometry":{"type":"Polygon","coordinates":[[[1.5,2],[3,4],[5,6],[1.5,2]]]},"properties":{"ZCTA5":"43004","OBJECTID":12}},
		{"type":"Feature","geometry":null,"properties":{"ZCTA5":43201}}
	]}`

	features, err := DecodeSourceCollection(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, json.Number("43201"), features[1].Properties["ZCTA5"])
}

func TestDecodeSourceCollection_NotFeatureCollection(t *testing.T) {
	_, err := DecodeSourceCollection(strings.NewReader(`{"error":{"code":400}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFeatureCollection))

	_, err = DecodeSourceCollection(strings.NewReader(`not json`))
	require.Error(t, err)
}

func TestDecodeSourceCollection_TrailingData(t *testing.T) {
	valid := `{"type":"FeatureCollection","features":[]}`

	features, err := DecodeSourceCollection(strings.NewReader(valid + "\n  \n"))
	require.NoError(t, err, "trailing whitespace is fine")
	assert.Empty(t, features)

	for _, tail := range []string{`{"type":"FeatureCollection"}`, `garbage`, `]`} {
		_, err := DecodeSourceCollection(strings.NewReader(valid + tail))
		assert.Error(t, err, "tail %q", tail)
	}
}

func TestNormalizeFeature(t *testing.T) {
	geom := json.RawMessage(`{"type":"Polygon","coordinates":[[[-83.01, 39.9],[-82.9,39.9],[-82.9,40],[-83.01, 39.9]]]}`)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "43004", "43004"},
		{"padded string", " 43004 ", "43004"},
		{"number", json.Number("43201"), "43201"},
		{"missing", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := SourceFeature{
				Type:       "Feature",
				ID:         json.RawMessage(`7`),
				Geometry:   geom,
				Properties: map[string]any{"ZCTA5": tt.value, "OBJECTID": json.Number("12")},
			}
			got := NormalizeFeature(src, "ZCTA5")
			assert.Equal(t, tt.want, got.Properties.ZIP)
			assert.Equal(t, "Feature", got.Type)
			assert.Equal(t, string(geom), string(got.Geometry), "geometry must pass through byte-for-byte")
			assert.Equal(t, `7`, string(got.ID))
		})
	}
}

func TestNormalizeFeature_OnlyZIPProperty(t *testing.T) {
	src := SourceFeature{
		Geometry:   json.RawMessage(`null`),
		Properties: map[string]any{"ZCTA5": "43004", "NAME": "x"},
	}
	data, err := json.Marshal(NormalizeFeature(src, "ZCTA5"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Feature","geometry":null,"properties":{"zip":"43004"}}`, string(data))
}

func TestFeatureCollection_RoundTrip(t *testing.T) {
	fc := NewFeatureCollection(nil)
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))

	got, err := DecodeFeatureCollection(data)
	require.NoError(t, err)
	assert.Empty(t, got.Features)

	_, err = DecodeFeatureCollection([]byte(`{"type":"Feature"}`))
	assert.True(t, errors.Is(err, ErrNotFeatureCollection))
}

func TestFeatureCollection_ZIPs(t *testing.T) {
	fc := NewFeatureCollection([]Feature{
		{Properties: Properties{ZIP: "43201"}},
		{Properties: Properties{ZIP: ""}},
		{Properties: Properties{ZIP: "43004"}},
	})
	assert.Equal(t, []string{"43201", "43004"}, fc.ZIPs())
}
