package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter signals a non-positive height or roughness, or a
	// height equal to the roughness length (degenerate logarithm).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrShapeMismatch signals a roughness collection that does not align
	// with a batch's location count and order, or a misaligned batch index.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Projector applies the logarithmic wind profile law to project wind speeds
// measured at one height onto another height. The zero value is ready to use
// and leaves large projection factors unconstrained.
type Projector struct {
	// MaxFactor, when positive, rejects projections whose shear factor
	// magnitude exceeds it. Roughness lengths very close to either height
	// produce large but finite factors; sites where that happens usually
	// indicate a bad roughness estimate rather than a real wind profile.
	// Zero disables the guard.
	MaxFactor float64
}

// ShearFactor computes the multiplicative factor ln(targetHeight/roughness) /
// ln(measuredHeight/roughness) after validating the profile parameters.
// All three arguments are meters.
func (p Projector) ShearFactor(measuredHeight, targetHeight, roughness float64) (float64, error) {
	if measuredHeight <= 0 {
		return 0, fmt.Errorf("%w: measured height %g must be positive", ErrInvalidParameter, measuredHeight)
	}
	if targetHeight <= 0 {
		return 0, fmt.Errorf("%w: target height %g must be positive", ErrInvalidParameter, targetHeight)
	}
	if roughness <= 0 {
		return 0, fmt.Errorf("%w: roughness %g must be positive", ErrInvalidParameter, roughness)
	}
	// Equality makes one of the logarithms exactly zero; reject instead of
	// silently producing Inf or a zeroed series.
	if roughness == measuredHeight {
		return 0, fmt.Errorf("%w: roughness %g equals measured height", ErrInvalidParameter, roughness)
	}
	if roughness == targetHeight {
		return 0, fmt.Errorf("%w: roughness %g equals target height", ErrInvalidParameter, roughness)
	}

	factor := math.Log(targetHeight/roughness) / math.Log(measuredHeight/roughness)
	if p.MaxFactor > 0 && math.Abs(factor) > p.MaxFactor {
		return 0, fmt.Errorf("%w: shear factor %g exceeds configured maximum %g",
			ErrInvalidParameter, factor, p.MaxFactor)
	}
	return factor, nil
}

// ProjectSeries projects a single series from measuredHeight to targetHeight
// using one roughness length. The input is not modified; the returned series
// carries the same location and timestamps.
func (p Projector) ProjectSeries(s Series, measuredHeight, targetHeight, roughness float64) (Series, error) {
	factor, err := p.ShearFactor(measuredHeight, targetHeight, roughness)
	if err != nil {
		return Series{}, err
	}
	return scaleSeries(s, factor), nil
}

// ProjectBatch projects every series in the batch from measuredHeight to
// targetHeight. A single roughness value is broadcast to all locations; a
// longer slice must carry exactly one value per series, in series order.
// All parameters are validated before any value is computed, so the batch is
// either fully projected or untouched.
func (p Projector) ProjectBatch(b Batch, measuredHeight, targetHeight float64, roughness []float64) (Batch, error) {
	if err := b.Validate(); err != nil {
		return Batch{}, err
	}
	if len(roughness) == 0 {
		return Batch{}, fmt.Errorf("%w: at least one roughness value is required", ErrInvalidParameter)
	}

	factors := make([]float64, len(b.Series))
	switch {
	case len(roughness) == 1:
		// Explicit broadcast: one roughness length for every location.
		factor, err := p.ShearFactor(measuredHeight, targetHeight, roughness[0])
		if err != nil {
			return Batch{}, err
		}
		for i := range factors {
			factors[i] = factor
		}
	case len(roughness) == len(b.Series):
		for i, z0 := range roughness {
			factor, err := p.ShearFactor(measuredHeight, targetHeight, z0)
			if err != nil {
				return Batch{}, fmt.Errorf("series %s: %w", b.Series[i].Location, err)
			}
			factors[i] = factor
		}
	default:
		return Batch{}, fmt.Errorf("%w: %d roughness values for %d series",
			ErrShapeMismatch, len(roughness), len(b.Series))
	}

	projected := make([]Series, len(b.Series))
	for i, s := range b.Series {
		projected[i] = scaleSeries(s, factors[i])
	}
	return Batch{Series: projected}, nil
}

func scaleSeries(s Series, factor float64) Series {
	points := make([]Point, len(s.Points))
	for i, pt := range s.Points {
		points[i] = Point{Time: pt.Time, Value: pt.Value * factor}
	}
	return Series{Location: s.Location, Points: points}
}
