package geo

import (
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds written to the "kind" property.
const (
	KindTee     = "tee"
	KindGreen   = "green"
	KindFairway = "fairway"
	KindHazard  = "hazard"
)

// HoleFeatureCollection renders a hole document as GeoJSON: tee and green points, the
// fairway line and one closed polygon per hazard.
func HoleFeatureCollection(doc *models.HoleDocument) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if doc == nil {
		return fc
	}

	add := func(g orb.Geometry, kind string) *geojson.Feature {
		f := geojson.NewFeature(g)
		f.Properties["kind"] = kind
		f.Properties["holeNumber"] = doc.HoleNumber
		fc.Append(f)
		return f
	}

	if doc.Tee != nil {
		add(ToPoint(*doc.Tee), KindTee)
	}
	if doc.Green != nil {
		add(ToPoint(*doc.Green), KindGreen)
	}
	if len(doc.Fairway) > 0 {
		ls := make(orb.LineString, 0, len(doc.Fairway))
		for _, c := range doc.Fairway {
			ls = append(ls, ToPoint(c))
		}
		f := add(ls, KindFairway)
		f.Properties["par"] = doc.Par
		f.Properties["lengthYards"] = HoleLength(doc)
	}
	for i, h := range doc.Hazards {
		if len(h.Points) == 0 {
			continue
		}
		f := add(orb.Polygon{closedRing(h.Points)}, KindHazard)
		f.Properties["index"] = i
	}
	return fc
}

func closedRing(points []models.Coordinate) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, c := range points {
		ring = append(ring, ToPoint(c))
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}
