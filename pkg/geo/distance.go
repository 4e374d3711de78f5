package geo

import (
	"math"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

const (
	earthRadius  = 6371.0 // km
	yardsPerKm   = 1093.6132983
	degToRadians = math.Pi / 180.0
)

// Distance calculates the Haversine distance between two points in kilometers
func Distance(a, b models.Coordinate) float64 {
	lat1 := a.Latitude * degToRadians
	lat2 := b.Latitude * degToRadians
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * degToRadians

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Yards converts kilometers to yards.
func Yards(km float64) float64 { return km * yardsPerKm }

// HoleLength measures the playing line tee -> fairway points -> green in yards.
// Missing tee or green are skipped.
func HoleLength(doc *models.HoleDocument) float64 {
	if doc == nil {
		return 0
	}
	path := make([]models.Coordinate, 0, len(doc.Fairway)+2)
	if doc.Tee != nil {
		path = append(path, *doc.Tee)
	}
	path = append(path, doc.Fairway...)
	if doc.Green != nil {
		path = append(path, *doc.Green)
	}

	var km float64
	for i := 1; i < len(path); i++ {
		km += Distance(path[i-1], path[i])
	}
	return Yards(km)
}
