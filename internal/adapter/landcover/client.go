// Package landcover implements domain.RoughnessEstimator against a hosted
// land cover classification API. The API resolves a coordinate to a CORINE
// class code; the roughness length comes from the fixed domain lookup table.
package landcover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/gustmaps/windshear-service/internal/observability"
)

// Client implements domain.RoughnessEstimator using a land cover raster API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a land cover lookup client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// EstimateRoughness resolves loc to a land cover class and returns the
// corresponding roughness length in meters.
func (c *Client) EstimateRoughness(ctx context.Context, loc domain.Location) (float64, error) {
	code, err := c.classify(ctx, loc)
	if err != nil {
		c.metrics.RoughnessLookups.WithLabelValues("error").Inc()
		return 0, err
	}

	z0, err := domain.RoughnessFromLandCover(code)
	if err != nil {
		c.metrics.RoughnessLookups.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("location %s: %w", loc, err)
	}

	c.metrics.RoughnessLookups.WithLabelValues("success").Inc()
	c.logger.Debug("roughness estimated", "location", loc.String(), "class", code, "roughness", z0)
	return z0, nil
}

// EstimateRoughnessBatch returns one roughness length per location, in locs
// order. The first failing lookup aborts the batch.
func (c *Client) EstimateRoughnessBatch(ctx context.Context, locs []domain.Location) ([]float64, error) {
	out := make([]float64, len(locs))
	for i, loc := range locs {
		z0, err := c.EstimateRoughness(ctx, loc)
		if err != nil {
			return nil, err
		}
		out[i] = z0
	}
	return out, nil
}

// classify queries the land cover API for the class code at a coordinate.
func (c *Client) classify(ctx context.Context, loc domain.Location) (int, error) {
	params := url.Values{
		"lon": {fmt.Sprintf("%.6f", loc.Lon)},
		"lat": {fmt.Sprintf("%.6f", loc.Lat)},
	}
	fullURL := c.baseURL + "/v1/classify?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("land cover request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return 0, fmt.Errorf("land cover API error: status %d: %s", httpResp.StatusCode, body)
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("decode land cover response: %w", err)
	}
	return resp.Code, nil
}

// Land cover API response type.

type response struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}
