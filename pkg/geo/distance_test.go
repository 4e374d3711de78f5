package geo

import (
	"testing"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(c(36, -86), c(36, -86)), 1e-9)
	// one degree of latitude
	assert.InDelta(t, 111.19, Distance(c(0, 0), c(1, 0)), 0.01)
	// San Francisco to Los Angeles
	assert.InDelta(t, 559, Distance(c(37.7749, -122.4194), c(34.0522, -118.2437)), 2)
}

func TestHoleLength(t *testing.T) {
	tee, green := c(0, 0), c(0.002, 0)
	doc := &models.HoleDocument{
		Tee:     &tee,
		Green:   &green,
		Fairway: []models.Coordinate{c(0.001, 0)},
	}
	want := Yards(Distance(tee, green))
	assert.InDelta(t, want, HoleLength(doc), 1e-6)
	assert.InDelta(t, 243.2, HoleLength(doc), 0.5)

	assert.Zero(t, HoleLength(nil))
	assert.Zero(t, HoleLength(&models.HoleDocument{}))
}
