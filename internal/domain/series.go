package domain

import (
	"fmt"
	"time"
)

// Location is a WGS-84 coordinate pair in degrees. It is comparable and used
// as a series label.
type Location struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (l Location) String() string {
	return fmt.Sprintf("(%.5f,%.5f)", l.Lon, l.Lat)
}

// Point is one timestamped wind speed sample in m/s.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of samples for a single location.
// Points are sorted by time; values are never mutated after creation.
type Series struct {
	Location Location `json:"location"`
	Points   []Point  `json:"points"`
}

// Len returns the number of samples in the series.
func (s Series) Len() int { return len(s.Points) }

// Batch is an ordered collection of series sharing one timestamp index.
// Invariant: every series has the same length and identical timestamps in the
// same order. Construct through NewBatch to have the invariant checked.
type Batch struct {
	Series []Series `json:"series"`
}

// NewBatch builds a Batch from the given series, validating the shared
// timestamp index. Series order is preserved; it determines how per-location
// roughness values are matched during projection.
func NewBatch(series []Series) (Batch, error) {
	b := Batch{Series: series}
	if err := b.Validate(); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// Validate checks the aligned-index invariant: all series in the batch have
// the same length and the same timestamps in the same order.
func (b Batch) Validate() error {
	if len(b.Series) == 0 {
		return nil
	}
	ref := b.Series[0]
	for i := 1; i < len(b.Series); i++ {
		s := b.Series[i]
		if len(s.Points) != len(ref.Points) {
			return fmt.Errorf("%w: series %s has %d samples, series %s has %d",
				ErrShapeMismatch, s.Location, len(s.Points), ref.Location, len(ref.Points))
		}
		for j := range s.Points {
			if !s.Points[j].Time.Equal(ref.Points[j].Time) {
				return fmt.Errorf("%w: series %s timestamp %s at index %d differs from %s",
					ErrShapeMismatch, s.Location, s.Points[j].Time, j, ref.Points[j].Time)
			}
		}
	}
	return nil
}

// Locations returns the batch's locations in series order.
func (b Batch) Locations() []Location {
	locs := make([]Location, len(b.Series))
	for i, s := range b.Series {
		locs[i] = s.Location
	}
	return locs
}
