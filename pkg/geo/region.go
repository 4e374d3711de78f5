// Package geo turns hole coordinates into camera regions and measurements.
package geo

import (
	"math"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/paulmach/orb"
)

const (
	// MinimumSpan keeps regions from collapsing when all points coincide.
	MinimumSpan = 0.0005

	// DefaultFitPadding widens a coordinate bounding box so markers are not on the edge.
	DefaultFitPadding = 1.15

	// DefaultZoomMultiplier tightens a fitted region when zooming onto a hole.
	DefaultZoomMultiplier = 0.6

	// PointSpan frames a single tee or user position.
	PointSpan = 0.002

	// FairwaySpan frames the first fairway point when nothing better is known.
	FairwaySpan = 0.005

	// ZoomOutBaseSpan is scaled by the zoom-out factor around the tee.
	ZoomOutBaseSpan = 0.004
)

// DefaultRegion is shown when the hole has no geometry and no location fix exists.
var DefaultRegion = models.CameraRegion{
	Latitude:       36.48391,
	Longitude:      -86.84069,
	LatitudeDelta:  0.001,
	LongitudeDelta: 0.001,
}

// RegionForCoordinates frames coords: the center is the bounding box midpoint and each span
// is the box extent times padding, floored at MinimumSpan. It returns false for no coords.
// The result depends only on the set of coordinates, not their order.
func RegionForCoordinates(coords []models.Coordinate, padding float64) (models.CameraRegion, bool) {
	if len(coords) == 0 {
		return models.CameraRegion{}, false
	}
	if padding <= 0 {
		padding = DefaultFitPadding
	}

	b := Bound(coords)
	center := b.Center()
	return models.CameraRegion{
		Latitude:       center.Lat(),
		Longitude:      center.Lon(),
		LatitudeDelta:  math.Max(MinimumSpan, (b.Max.Lat()-b.Min.Lat())*padding),
		LongitudeDelta: math.Max(MinimumSpan, (b.Max.Lon()-b.Min.Lon())*padding),
	}, true
}

// RegionAround returns a square region of the given span centered on c.
func RegionAround(c models.Coordinate, span float64) models.CameraRegion {
	span = math.Max(MinimumSpan, span)
	return models.CameraRegion{
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		LatitudeDelta:  span,
		LongitudeDelta: span,
	}
}

// Scale multiplies both spans by m, flooring at MinimumSpan. The center is unchanged.
func Scale(r models.CameraRegion, m float64) models.CameraRegion {
	r.LatitudeDelta = math.Max(MinimumSpan, r.LatitudeDelta*m)
	r.LongitudeDelta = math.Max(MinimumSpan, r.LongitudeDelta*m)
	return r
}

// Bound returns the bounding box of coords in orb's lon/lat order.
func Bound(coords []models.Coordinate) orb.Bound {
	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, ToPoint(c))
	}
	return mp.Bound()
}

// ToPoint converts a coordinate to an orb point (x=lon, y=lat).
func ToPoint(c models.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
