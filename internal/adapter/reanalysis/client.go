// Package reanalysis implements domain.WeatherSource against a hosted
// MERRA-2-style hourly reanalysis HTTP API.
package reanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/gustmaps/windshear-service/internal/observability"
	"github.com/umahmood/haversine"
)

const (
	// referenceHeight is the height above ground of the U50M/V50M wind
	// components, in meters.
	referenceHeight = 50.0

	// MERRA-2 grid spacing. A location farther than half a cell beyond the
	// nearest returned grid point is outside the dataset's coverage.
	maxLonDifference = 0.3125
	maxLatDifference = 0.25
)

// Client fetches hourly wind speed series from a reanalysis API.
// It implements domain.WeatherSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a reanalysis API client.
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

// ReferenceHeight reports the sampling height of the wind components.
func (c *Client) ReferenceHeight() float64 { return referenceHeight }

// FetchWindSpeed requests the zonal and meridional wind components for a
// bounding region covering locs and combines them into one wind speed series
// per location, in request order. Each location snaps to the nearest grid
// point of the dataset; locations beyond a grid cell of every returned point
// fail with domain.ErrOutsideGrid.
func (c *Client) FetchWindSpeed(ctx context.Context, locs []domain.Location, from, to time.Time) (domain.Batch, error) {
	if len(locs) == 0 {
		return domain.Batch{}, fmt.Errorf("%w: no locations requested", domain.ErrInvalidParameter)
	}

	resp, err := c.fetchHourly(ctx, locs, from, to)
	if err != nil {
		return domain.Batch{}, err
	}
	c.logger.Debug("reanalysis fetch complete",
		"locations", len(locs),
		"grid_points", len(resp.Points),
		"samples", len(resp.Times),
	)

	if len(resp.Times) == 0 || len(resp.Points) == 0 {
		return domain.Batch{}, fmt.Errorf("%w: %d locations in [%s, %s)", domain.ErrNoData, len(locs), from, to)
	}

	times := make([]time.Time, len(resp.Times))
	for i, ts := range resp.Times {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("parse reanalysis timestamp %q: %w", ts, err)
		}
		times[i] = parsed.UTC()
	}

	series := make([]domain.Series, len(locs))
	for i, loc := range locs {
		point, err := nearestGridPoint(loc, resp.Points)
		if err != nil {
			return domain.Batch{}, err
		}
		s, err := windSpeedSeries(loc, times, point)
		if err != nil {
			return domain.Batch{}, err
		}
		series[i] = s
	}

	return domain.NewBatch(series)
}

// fetchHourly performs the HTTP request and decodes the response.
func (c *Client) fetchHourly(ctx context.Context, locs []domain.Location, from, to time.Time) (*response, error) {
	params := url.Values{
		"bbox":  {boundingBox(locs)},
		"vars":  {"U50M,V50M"},
		"start": {from.UTC().Format(time.RFC3339)},
		"end":   {to.UTC().Format(time.RFC3339)},
	}
	fullURL := c.baseURL + "/v1/hourly?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	c.metrics.WeatherFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherFetchErrors.Inc()
		return nil, fmt.Errorf("reanalysis request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		c.metrics.WeatherFetchErrors.Inc()
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("reanalysis API error: status %d: %s", httpResp.StatusCode, body)
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		c.metrics.WeatherFetchErrors.Inc()
		return nil, fmt.Errorf("decode reanalysis response: %w", err)
	}
	return &resp, nil
}

// boundingBox computes a "minLon,minLat,maxLon,maxLat" region covering all
// locations, padded by one grid cell so edge locations still receive their
// nearest grid point.
func boundingBox(locs []domain.Location) string {
	minLon, maxLon := locs[0].Lon, locs[0].Lon
	minLat, maxLat := locs[0].Lat, locs[0].Lat
	for _, loc := range locs[1:] {
		minLon = math.Min(minLon, loc.Lon)
		maxLon = math.Max(maxLon, loc.Lon)
		minLat = math.Min(minLat, loc.Lat)
		maxLat = math.Max(maxLat, loc.Lat)
	}
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
		minLon-maxLonDifference, minLat-maxLatDifference,
		maxLon+maxLonDifference, maxLat+maxLatDifference)
}

// nearestGridPoint picks the grid point closest to loc by great-circle
// distance, rejecting matches farther than the grid spacing allows.
func nearestGridPoint(loc domain.Location, points []gridPoint) (gridPoint, error) {
	want := haversine.Coord{Lat: loc.Lat, Lon: loc.Lon}

	best := 0
	var bestKm float64
	for i, p := range points {
		_, km := haversine.Distance(want, haversine.Coord{Lat: p.Lat, Lon: p.Lon})
		if i == 0 || km < bestKm {
			best = i
			bestKm = km
		}
	}

	nearest := points[best]
	if math.Abs(nearest.Lon-loc.Lon) > maxLonDifference || math.Abs(nearest.Lat-loc.Lat) > maxLatDifference {
		return gridPoint{}, fmt.Errorf("%w: %s is %.1f km from nearest grid point (%.4f,%.4f)",
			domain.ErrOutsideGrid, loc, bestKm, nearest.Lon, nearest.Lat)
	}
	return nearest, nil
}

// windSpeedSeries combines the U and V components of a grid point into a
// total wind speed series labeled with the originally requested location.
func windSpeedSeries(loc domain.Location, times []time.Time, point gridPoint) (domain.Series, error) {
	u := point.Values["U50M"]
	v := point.Values["V50M"]
	if len(u) != len(times) || len(v) != len(times) {
		return domain.Series{}, fmt.Errorf("%w: grid point (%.4f,%.4f) has %d/%d component samples for %d timestamps",
			domain.ErrShapeMismatch, point.Lon, point.Lat, len(u), len(v), len(times))
	}

	points := make([]domain.Point, len(times))
	for i := range times {
		points[i] = domain.Point{
			Time:  times[i],
			Value: math.Sqrt(u[i]*u[i] + v[i]*v[i]),
		}
	}
	return domain.Series{Location: loc, Points: points}, nil
}

// Reanalysis API response types.

type response struct {
	Times  []string    `json:"times"`
	Points []gridPoint `json:"points"`
}

type gridPoint struct {
	Lon    float64              `json:"lon"`
	Lat    float64              `json:"lat"`
	Values map[string][]float64 `json:"values"`
}
