package models

import (
	"fmt"
	"time"
)

// Coordinate is a single map position. Values are not range checked.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Coordinate
	TopRight   Coordinate
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.BottomLeft.Latitude && c.Latitude <= b.TopRight.Latitude &&
		c.Longitude >= b.BottomLeft.Longitude && c.Longitude <= b.TopRight.Longitude
}

// CameraRegion is a viewport: a center plus a span in each axis.
type CameraRegion struct {
	Latitude       float64 `json:"latitude" yaml:"latitude"`
	Longitude      float64 `json:"longitude" yaml:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta" yaml:"latitude_delta"`
	LongitudeDelta float64 `json:"longitudeDelta" yaml:"longitude_delta"`
}

// Center returns the region's center coordinate.
func (r CameraRegion) Center() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Bounds returns the box covered by the region.
func (r CameraRegion) Bounds() BoundingBox {
	return BoundingBox{
		BottomLeft: Coordinate{Latitude: r.Latitude - r.LatitudeDelta/2, Longitude: r.Longitude - r.LongitudeDelta/2},
		TopRight:   Coordinate{Latitude: r.Latitude + r.LatitudeDelta/2, Longitude: r.Longitude + r.LongitudeDelta/2},
	}
}

// EdgePadding is screen padding in points applied when fitting coordinates.
type EdgePadding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// CaptureMode selects how a map tap is recorded.
type CaptureMode int

const (
	ModeTee CaptureMode = iota
	ModeGreen
	ModeFairway
	ModeHazard
)

var modeNames = [...]string{"tee", "green", "fairway", "hazard"}

func (m CaptureMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("CaptureMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseCaptureMode converts a mode name back into a CaptureMode.
func ParseCaptureMode(s string) (CaptureMode, error) {
	for i, name := range modeNames {
		if name == s {
			return CaptureMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown capture mode %q", ErrValidation, s)
}

// DefaultPar is written to every exported hole.
const DefaultPar = 4

// HazardDocument wraps one hazard polygon in the stored document.
type HazardDocument struct {
	Points []Coordinate `json:"points"`
}

// HoleDocument is the persisted shape of a mapped hole.
type HoleDocument struct {
	HoleNumber int              `json:"holeNumber"`
	Par        int              `json:"par"`
	Tee        *Coordinate      `json:"tee"`
	Green      *Coordinate      `json:"green"`
	Fairway    []Coordinate     `json:"fairway"`
	Hazards    []HazardDocument `json:"hazards"`
	CreatedAt  time.Time        `json:"createdAt"`
	CourseName string           `json:"courseName"`
}

// Pin is an indexed point belonging to a saved hole.
type Pin struct {
	ID         string     `json:"id"`
	Course     string     `json:"course"`
	HoleNumber int        `json:"holeNumber"`
	Kind       string     `json:"kind"` // tee | green
	Location   Coordinate `json:"location"`
}
