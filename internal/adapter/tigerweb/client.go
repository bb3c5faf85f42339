// Package tigerweb queries the Census TIGERweb ArcGIS REST service for ZCTA
// boundary polygons.
package tigerweb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
	"github.com/couchcryptid/zip-coverage/internal/observability"
)

// DefaultURL is the ZCTA layer query endpoint.
const DefaultURL = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/PUMA_TAD_TAZ_UGA_ZCTA/MapServer/7/query"

// DefaultZIPField is the attribute holding the five-digit ZCTA code.
const DefaultZIPField = "ZCTA5"

const maxErrorBody = 200

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string // first 200 bytes
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tigerweb error %s\n%s", e.Status, e.Body)
}

// Client fetches ZCTA features by ZIP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	zipField   string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a TIGERweb client.
func NewClient(baseURL, zipField string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if zipField == "" {
		zipField = DefaultZIPField
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		zipField: zipField,
		metrics:  metrics,
		logger:   logger,
	}
}

// QueryZIPs fetches the boundaries for one batch of ZIPs and returns them
// normalized to {zip} properties, in service order.
func (c *Client) QueryZIPs(ctx context.Context, zips []string) ([]geo.Feature, error) {
	if len(zips) == 0 {
		return nil, nil
	}

	start := domain.Clock().Now()
	features, err := c.doRequest(ctx, c.queryURL(zips))
	c.metrics.BoundaryAPIDuration.Observe(domain.Clock().Since(start).Seconds())
	if err != nil {
		c.metrics.BoundaryRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.BoundaryRequests.WithLabelValues("success").Inc()
	c.metrics.BoundaryFeatures.Add(float64(len(features)))

	c.logger.Debug("tigerweb batch fetched", "requested", len(zips), "features", len(features))
	return features, nil
}

func (c *Client) queryURL(zips []string) string {
	quoted := make([]string, len(zips))
	for i, z := range zips {
		quoted[i] = "'" + strings.ReplaceAll(z, "'", "''") + "'"
	}
	params := url.Values{
		"where":          {fmt.Sprintf("%s IN (%s)", c.zipField, strings.Join(quoted, ","))},
		"outFields":      {c.zipField},
		"returnGeometry": {"true"},
		"outSR":          {"4326"},
		"f":              {"geojson"},
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]geo.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tigerweb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	src, err := geo.DecodeSourceCollection(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tigerweb response: %w", err)
	}

	features := make([]geo.Feature, 0, len(src))
	for _, f := range src {
		features = append(features, geo.NormalizeFeature(f, c.zipField))
	}
	return features, nil
}
