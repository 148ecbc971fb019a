// Command assess runs a one-shot wind shear assessment from the terminal:
// it fetches reference-height wind speed for the given locations, estimates
// surface roughness from land cover, projects the series to the target
// height, and prints the result as JSON.
//
// Usage:
//
//	go run ./cmd/assess \
//	  -location 6.03,50.81 -location 6.28,50.92 \
//	  -from 2015-01-01T00:00:00Z -to 2015-01-02T00:00:00Z \
//	  -target-height 120
//
// The reanalysis and land cover endpoints are taken from WEATHER_BASE_URL
// and LANDCOVER_BASE_URL, same as the service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gustmaps/windshear-service/internal/adapter/landcover"
	"github.com/gustmaps/windshear-service/internal/adapter/reanalysis"
	"github.com/gustmaps/windshear-service/internal/config"
	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/gustmaps/windshear-service/internal/observability"
)

// locationList collects repeated -location flags as "lon,lat" pairs.
type locationList []domain.Location

func (l *locationList) String() string {
	parts := make([]string, len(*l))
	for i, loc := range *l {
		parts[i] = fmt.Sprintf("%g,%g", loc.Lon, loc.Lat)
	}
	return strings.Join(parts, " ")
}

func (l *locationList) Set(value string) error {
	lonStr, latStr, ok := strings.Cut(value, ",")
	if !ok {
		return fmt.Errorf("expected lon,lat: %q", value)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", lonStr, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", latStr, err)
	}
	*l = append(*l, domain.Location{Lon: lon, Lat: lat})
	return nil
}

type assessment struct {
	MeasuredHeight float64         `json:"measured_height"`
	TargetHeight   float64         `json:"target_height"`
	Roughness      []float64       `json:"roughness"`
	Series         []domain.Series `json:"series"`
}

func main() {
	var locs locationList
	flag.Var(&locs, "location", "lon,lat pair to assess (repeatable)")
	fromStr := flag.String("from", "", "start of the assessment window (RFC 3339)")
	toStr := flag.String("to", "", "end of the assessment window (RFC 3339)")
	targetHeight := flag.Float64("target-height", 0, "hub height in meters to project to")
	flag.Parse()

	if len(locs) == 0 || *fromStr == "" || *toStr == "" || *targetHeight <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	from, err := time.Parse(time.RFC3339, *fromStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(1)
	}
	to, err := time.Parse(time.RFC3339, *toStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
		os.Exit(1)
	}

	if code := run(locs, from, to, *targetHeight); code != 0 {
		os.Exit(code)
	}
}

func run(locs []domain.Location, from, to time.Time, targetHeight float64) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	weather := reanalysis.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
	roughness := landcover.NewClient(cfg.LandCoverBaseURL, cfg.LandCoverTimeout, metrics, logger)
	projector := domain.Projector{MaxFactor: cfg.MaxShearFactor}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WeatherTimeout+cfg.LandCoverTimeout)
	defer cancel()

	measured, err := weather.FetchWindSpeed(ctx, locs, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch wind speed: %v\n", err)
		return 1
	}

	z0, err := roughness.EstimateRoughnessBatch(ctx, locs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "estimate roughness: %v\n", err)
		return 1
	}

	projected, err := projector.ProjectBatch(measured, weather.ReferenceHeight(), targetHeight, z0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "project: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(assessment{
		MeasuredHeight: weather.ReferenceHeight(),
		TargetHeight:   targetHeight,
		Roughness:      z0,
		Series:         projected.Series,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	return 0
}
