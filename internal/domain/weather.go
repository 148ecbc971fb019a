package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData signals that the weather source holds no samples for the
	// requested locations and time range.
	ErrNoData = errors.New("no weather data for request")

	// ErrOutsideGrid signals a location farther from every source grid point
	// than the dataset's cell spacing allows.
	ErrOutsideGrid = errors.New("location outside source grid")
)

// WeatherSource supplies historical wind speed series from a reanalysis
// dataset. Samples are taken at the source's fixed reference height with a
// regular (hourly) time step.
type WeatherSource interface {
	// FetchWindSpeed returns one series per requested location, in request
	// order, covering [from, to) with a shared timestamp index. Timestamps
	// are UTC.
	FetchWindSpeed(ctx context.Context, locs []Location, from, to time.Time) (Batch, error)

	// ReferenceHeight reports the height in meters above ground at which the
	// source's wind speeds are sampled.
	ReferenceHeight() float64
}
