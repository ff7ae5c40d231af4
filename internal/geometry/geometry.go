// Package geometry normalizes alert-area geometry into bounding boxes,
// coverage estimates, and a shape classification.
package geometry

import (
	"fmt"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// Summarize classifies raw alert geometry and computes its bounding box and
// coverage area in a single pass over all rings.
//
// Classification: a single one-point ring is a point; a single ring with at
// least 3 points is a polygon; multiple rings form a multipolygon. Coverage
// area is the bounding-box area in square degrees, not a geodesic area
// claim; it only needs to be comparable between alerts.
//
// Returns domain.ErrMalformedGeometry when there are no rings, a ring has
// fewer than 3 points for polygon shapes, or any coordinate is outside valid
// lat/lon ranges. Callers treat that as non-fatal: the alert proceeds with
// no geometry summary.
func Summarize(g domain.RawGeometry) (domain.GeometrySummary, error) {
	if len(g.Rings) == 0 {
		return domain.GeometrySummary{}, fmt.Errorf("%w: no rings", domain.ErrMalformedGeometry)
	}

	shape, count, err := classify(g.Rings)
	if err != nil {
		return domain.GeometrySummary{}, err
	}

	s := domain.GeometrySummary{
		Type:            shape,
		CoordinateCount: count,
		MinLat:          91,
		MaxLat:          -91,
		MinLon:          181,
		MaxLon:          -181,
	}
	for _, ring := range g.Rings {
		for _, c := range ring {
			if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
				return domain.GeometrySummary{}, fmt.Errorf("%w: coordinate out of range (%g, %g)",
					domain.ErrMalformedGeometry, c.Lat, c.Lon)
			}
			s.MinLat = min(s.MinLat, c.Lat)
			s.MaxLat = max(s.MaxLat, c.Lat)
			s.MinLon = min(s.MinLon, c.Lon)
			s.MaxLon = max(s.MaxLon, c.Lon)
		}
	}
	s.AreaSqDeg = (s.MaxLat - s.MinLat) * (s.MaxLon - s.MinLon)
	return s, nil
}

// classify determines the shape tag from ring and point counts.
func classify(rings [][]domain.Coordinate) (string, int, error) {
	total := 0
	for i, ring := range rings {
		total += len(ring)
		if len(rings) == 1 && len(ring) == 1 {
			continue
		}
		if len(ring) < 3 {
			return "", 0, fmt.Errorf("%w: ring %d has %d points, need at least 3",
				domain.ErrMalformedGeometry, i, len(ring))
		}
	}

	switch {
	case len(rings) == 1 && len(rings[0]) == 1:
		return domain.GeometryPoint, total, nil
	case len(rings) == 1:
		return domain.GeometryPolygon, total, nil
	default:
		return domain.GeometryMultiPolygon, total, nil
	}
}
