package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	measuredHeight50 = 50.0
	targetHeight120  = 120.0
	relTolerance     = 1e-5
)

func hourlySeries(loc Location, values ...float64) Series {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Time: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return Series{Location: loc, Points: points}
}

func TestShearFactor(t *testing.T) {
	var p Projector

	t.Run("identity when heights match", func(t *testing.T) {
		factor, err := p.ShearFactor(measuredHeight50, measuredHeight50, 0.75)
		require.NoError(t, err)
		assert.InEpsilon(t, 1.0, factor, relTolerance)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		cases := []struct {
			name                        string
			measured, target, roughness float64
		}{
			{"zero measured height", 0, targetHeight120, 0.75},
			{"negative measured height", -50, targetHeight120, 0.75},
			{"zero target height", measuredHeight50, 0, 0.75},
			{"negative target height", measuredHeight50, -120, 0.75},
			{"zero roughness", measuredHeight50, targetHeight120, 0},
			{"negative roughness", measuredHeight50, targetHeight120, -0.05},
			{"roughness equals measured height", measuredHeight50, targetHeight120, measuredHeight50},
			{"roughness equals target height", measuredHeight50, targetHeight120, targetHeight120},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := p.ShearFactor(tc.measured, tc.target, tc.roughness)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidParameter)
			})
		}
	})

	t.Run("max factor guard", func(t *testing.T) {
		guarded := Projector{MaxFactor: 2.0}

		// Roughness just under measured height blows the factor up.
		_, err := guarded.ShearFactor(measuredHeight50, targetHeight120, 49.9)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		// The same parameters pass with the guard disabled.
		factor, err := p.ShearFactor(measuredHeight50, targetHeight120, 49.9)
		require.NoError(t, err)
		assert.Greater(t, factor, 2.0)
	})
}

func TestProjectSeries(t *testing.T) {
	var p Projector
	loc := Location{Lon: 6.03, Lat: 50.81}

	t.Run("documented worked example", func(t *testing.T) {
		s := hourlySeries(loc, 5.457981)

		out, err := p.ProjectSeries(s, measuredHeight50, targetHeight120, 0.75)
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.InEpsilon(t, 6.595749, out.Points[0].Value, relTolerance)
	})

	t.Run("identity at measured height", func(t *testing.T) {
		s := hourlySeries(loc, 5.457981, 6.2, 4.9)

		out, err := p.ProjectSeries(s, measuredHeight50, measuredHeight50, 0.75)
		require.NoError(t, err)
		require.Equal(t, s.Len(), out.Len())
		for i := range s.Points {
			assert.InEpsilon(t, s.Points[i].Value, out.Points[i].Value, relTolerance)
			assert.Equal(t, s.Points[i].Time, out.Points[i].Time)
		}
	})

	t.Run("inverse projection round-trips", func(t *testing.T) {
		s := hourlySeries(loc, 5.457981, 6.2, 4.9, 7.31)

		up, err := p.ProjectSeries(s, measuredHeight50, targetHeight120, 0.05)
		require.NoError(t, err)
		down, err := p.ProjectSeries(up, targetHeight120, measuredHeight50, 0.05)
		require.NoError(t, err)

		for i := range s.Points {
			assert.InEpsilon(t, s.Points[i].Value, down.Points[i].Value, relTolerance)
		}
	})

	t.Run("input series is not modified", func(t *testing.T) {
		s := hourlySeries(loc, 5.0)

		_, err := p.ProjectSeries(s, measuredHeight50, targetHeight120, 0.75)
		require.NoError(t, err)
		assert.Equal(t, 5.0, s.Points[0].Value)
	})
}

func TestProjectBatch(t *testing.T) {
	var p Projector

	locs := []Location{
		{Lon: 6.03, Lat: 50.81},
		{Lon: 6.28, Lat: 50.81},
		{Lon: 6.53, Lat: 50.81},
	}

	identicalBatch := func() Batch {
		series := make([]Series, len(locs))
		for i, loc := range locs {
			series[i] = hourlySeries(loc, 6.117667)
		}
		b, err := NewBatch(series)
		require.NoError(t, err)
		return b
	}

	t.Run("per-location roughness diverges identical inputs", func(t *testing.T) {
		b := identicalBatch()

		out, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.5, 0.05, 0.03})
		require.NoError(t, err)
		require.Len(t, out.Series, 3)

		expected := []float64{7.280669, 6.893002, 6.839614}
		for i, want := range expected {
			assert.InEpsilon(t, want, out.Series[i].Points[0].Value, relTolerance,
				"series %d (%s)", i, out.Series[i].Location)
		}
	})

	t.Run("scalar roughness broadcasts to every location", func(t *testing.T) {
		b := identicalBatch()

		broadcast, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.75})
		require.NoError(t, err)
		elementwise, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.75, 0.75, 0.75})
		require.NoError(t, err)

		require.Len(t, broadcast.Series, len(elementwise.Series))
		for i := range broadcast.Series {
			assert.Equal(t, elementwise.Series[i], broadcast.Series[i])
		}
	})

	t.Run("batch equals independent series projections", func(t *testing.T) {
		series := []Series{
			hourlySeries(locs[0], 6.117667, 5.2),
			hourlySeries(locs[1], 4.8, 7.1),
		}
		b, err := NewBatch(series)
		require.NoError(t, err)
		roughness := []float64{0.5, 0.05}

		out, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, roughness)
		require.NoError(t, err)

		for i, s := range series {
			single, err := p.ProjectSeries(s, measuredHeight50, targetHeight120, roughness[i])
			require.NoError(t, err)
			assert.Equal(t, single, out.Series[i])
		}
	})

	t.Run("roughness length mismatch", func(t *testing.T) {
		b := identicalBatch()

		_, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.5, 0.05})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("empty roughness", func(t *testing.T) {
		b := identicalBatch()

		_, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("no partial output on bad roughness", func(t *testing.T) {
		b := identicalBatch()

		// Second value is degenerate; the whole batch must be rejected.
		out, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.5, measuredHeight50, 0.03})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		assert.Empty(t, out.Series)
	})

	t.Run("misaligned batch is rejected", func(t *testing.T) {
		b := Batch{Series: []Series{
			hourlySeries(locs[0], 6.1, 5.2),
			hourlySeries(locs[1], 4.8),
		}}

		_, err := p.ProjectBatch(b, measuredHeight50, targetHeight120, []float64{0.5, 0.05})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}
