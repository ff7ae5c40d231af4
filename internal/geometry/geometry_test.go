package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

func ring(coords ...[2]float64) []domain.Coordinate {
	out := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = domain.Coordinate{Lat: c[0], Lon: c[1]}
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		s, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{31.02, -98.44}),
		}})

		require.NoError(t, err)
		assert.Equal(t, domain.GeometryPoint, s.Type)
		assert.Equal(t, 1, s.CoordinateCount)
		assert.Equal(t, 31.02, s.MinLat)
		assert.Equal(t, 31.02, s.MaxLat)
		assert.Equal(t, -98.44, s.MinLon)
		assert.Equal(t, -98.44, s.MaxLon)
		assert.Equal(t, 0.0, s.AreaSqDeg)
	})

	t.Run("triangle polygon", func(t *testing.T) {
		s, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{30, -98}, [2]float64{31, -98}, [2]float64{31, -97}),
		}})

		require.NoError(t, err)
		assert.Equal(t, domain.GeometryPolygon, s.Type)
		assert.Equal(t, 3, s.CoordinateCount)
		assert.Equal(t, 30.0, s.MinLat)
		assert.Equal(t, 31.0, s.MaxLat)
		assert.Equal(t, -98.0, s.MinLon)
		assert.Equal(t, -97.0, s.MaxLon)
		assert.InDelta(t, 1.0, s.AreaSqDeg, 1e-9)
	})

	t.Run("multipolygon spans all rings", func(t *testing.T) {
		s, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{30, -98}, [2]float64{31, -98}, [2]float64{31, -97}),
			ring([2]float64{33, -96}, [2]float64{34, -96}, [2]float64{34, -95}, [2]float64{33, -95}),
		}})

		require.NoError(t, err)
		assert.Equal(t, domain.GeometryMultiPolygon, s.Type)
		assert.Equal(t, 7, s.CoordinateCount)
		assert.Equal(t, 30.0, s.MinLat)
		assert.Equal(t, 34.0, s.MaxLat)
		assert.Equal(t, -98.0, s.MinLon)
		assert.Equal(t, -95.0, s.MaxLon)
	})

	t.Run("invariants hold", func(t *testing.T) {
		s, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{34, -95}, [2]float64{30, -98}, [2]float64{32, -96.5}),
		}})

		require.NoError(t, err)
		assert.LessOrEqual(t, s.MinLat, s.MaxLat)
		assert.LessOrEqual(t, s.MinLon, s.MaxLon)
		assert.GreaterOrEqual(t, s.CoordinateCount, 3)
	})

	t.Run("empty geometry", func(t *testing.T) {
		_, err := Summarize(domain.RawGeometry{})
		require.ErrorIs(t, err, domain.ErrMalformedGeometry)
	})

	t.Run("two-point ring", func(t *testing.T) {
		_, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{30, -98}, [2]float64{31, -97}),
		}})
		require.ErrorIs(t, err, domain.ErrMalformedGeometry)
	})

	t.Run("degenerate ring in multipolygon", func(t *testing.T) {
		_, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{30, -98}, [2]float64{31, -98}, [2]float64{31, -97}),
			ring([2]float64{33, -96}),
		}})
		require.ErrorIs(t, err, domain.ErrMalformedGeometry)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{91.5, -98}, [2]float64{31, -98}, [2]float64{31, -97}),
		}})
		require.ErrorIs(t, err, domain.ErrMalformedGeometry)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := Summarize(domain.RawGeometry{Rings: [][]domain.Coordinate{
			ring([2]float64{30, -181.2}, [2]float64{31, -98}, [2]float64{31, -97}),
		}})
		require.ErrorIs(t, err, domain.ErrMalformedGeometry)
	})
}
