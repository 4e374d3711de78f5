// Package geometry records a hole's tee, green, fairway and hazards from map taps.
package geometry

import (
	"fmt"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

const (
	// MinHazardPoints is the smallest polygon a hazard can be committed with.
	MinHazardPoints = 3
	// MinFairwayPoints is the shortest fairway polyline accepted for export.
	MinFairwayPoints = 2
)

// HoleGeometry is the in-progress geometry of one hole.
type HoleGeometry struct {
	Tee           *models.Coordinate
	Green         *models.Coordinate
	Fairway       []models.Coordinate
	Hazards       [][]models.Coordinate
	CurrentHazard []models.Coordinate
}

// AllCoordinates lists tee, green, fairway, committed hazards and the in-progress hazard,
// in that order.
func (g HoleGeometry) AllCoordinates() []models.Coordinate {
	n := len(g.Fairway) + len(g.CurrentHazard) + 2
	for _, h := range g.Hazards {
		n += len(h)
	}
	out := make([]models.Coordinate, 0, n)
	if g.Tee != nil {
		out = append(out, *g.Tee)
	}
	if g.Green != nil {
		out = append(out, *g.Green)
	}
	out = append(out, g.Fairway...)
	for _, h := range g.Hazards {
		out = append(out, h...)
	}
	out = append(out, g.CurrentHazard...)
	return out
}

// IsEmpty reports whether no coordinate has been captured yet.
func (g HoleGeometry) IsEmpty() bool {
	return g.Tee == nil && g.Green == nil && len(g.Fairway) == 0 &&
		len(g.Hazards) == 0 && len(g.CurrentHazard) == 0
}

// Clone returns a deep copy.
func (g HoleGeometry) Clone() HoleGeometry {
	out := HoleGeometry{
		Fairway:       cloneCoords(g.Fairway),
		CurrentHazard: cloneCoords(g.CurrentHazard),
	}
	if g.Tee != nil {
		t := *g.Tee
		out.Tee = &t
	}
	if g.Green != nil {
		gr := *g.Green
		out.Green = &gr
	}
	if g.Hazards != nil {
		out.Hazards = make([][]models.Coordinate, len(g.Hazards))
		for i, h := range g.Hazards {
			out.Hazards[i] = cloneCoords(h)
		}
	}
	return out
}

// Accumulator applies map taps to a HoleGeometry according to the active capture mode.
// It is not safe for concurrent use; a mapper session drives it from one event loop.
type Accumulator struct {
	geom HoleGeometry
	mode models.CaptureMode
	now  func() time.Time
}

// NewAccumulator returns an empty accumulator in tee mode.
func NewAccumulator() *Accumulator {
	return &Accumulator{mode: models.ModeTee, now: time.Now}
}

// Mode returns the active capture mode.
func (a *Accumulator) Mode() models.CaptureMode { return a.mode }

// SetMode switches the capture mode. Leaving hazard mode drops an uncommitted hazard.
func (a *Accumulator) SetMode(m models.CaptureMode) {
	if m != models.ModeHazard {
		a.geom.CurrentHazard = nil
	}
	a.mode = m
}

// Snapshot returns a copy of the current geometry.
func (a *Accumulator) Snapshot() HoleGeometry { return a.geom.Clone() }

// Tap records c using the active mode.
func (a *Accumulator) Tap(c models.Coordinate) error { return a.ApplyTap(c, a.mode) }

// ApplyTap records c according to mode.
func (a *Accumulator) ApplyTap(c models.Coordinate, mode models.CaptureMode) error {
	switch mode {
	case models.ModeTee:
		a.geom.Tee = &c
	case models.ModeGreen:
		a.geom.Green = &c
	case models.ModeFairway:
		a.geom.Fairway = append(a.geom.Fairway, c)
	case models.ModeHazard:
		a.geom.CurrentHazard = append(a.geom.CurrentHazard, c)
	default:
		return fmt.Errorf("%w: unhandled capture mode %v", models.ErrValidation, mode)
	}
	return nil
}

// FinishHazard commits the in-progress hazard polygon. With fewer than three points it
// returns ErrValidation and leaves the state untouched.
func (a *Accumulator) FinishHazard() error {
	if len(a.geom.CurrentHazard) < MinHazardPoints {
		return fmt.Errorf("%w: need at least %d points to define a hazard", models.ErrValidation, MinHazardPoints)
	}
	a.geom.Hazards = append(a.geom.Hazards, cloneCoords(a.geom.CurrentHazard))
	a.geom.CurrentHazard = nil
	return nil
}

// Hydrate replaces tee, green, fairway and hazards with the document's values. Missing
// fields become empty. The in-progress hazard and the mode are left alone.
func (a *Accumulator) Hydrate(doc *models.HoleDocument) {
	if doc == nil {
		return
	}
	a.geom.Tee = nil
	if doc.Tee != nil {
		t := *doc.Tee
		a.geom.Tee = &t
	}
	a.geom.Green = nil
	if doc.Green != nil {
		g := *doc.Green
		a.geom.Green = &g
	}
	a.geom.Fairway = cloneCoords(doc.Fairway)
	a.geom.Hazards = nil
	for _, h := range doc.Hazards {
		a.geom.Hazards = append(a.geom.Hazards, cloneCoords(h.Points))
	}
}

// ToDocument materializes the geometry for export. Tee and green must be set and the
// fairway needs at least two points.
func (a *Accumulator) ToDocument(holeNumber int, courseName string) (*models.HoleDocument, error) {
	if a.geom.Tee == nil || a.geom.Green == nil || len(a.geom.Fairway) < MinFairwayPoints {
		return nil, fmt.Errorf("%w: must set tee, green, and fairway (at least %d points)",
			models.ErrValidation, MinFairwayPoints)
	}
	g := a.geom.Clone()
	hazards := make([]models.HazardDocument, 0, len(g.Hazards))
	for _, h := range g.Hazards {
		hazards = append(hazards, models.HazardDocument{Points: h})
	}
	return &models.HoleDocument{
		HoleNumber: holeNumber,
		Par:        models.DefaultPar,
		Tee:        g.Tee,
		Green:      g.Green,
		Fairway:    g.Fairway,
		Hazards:    hazards,
		CreatedAt:  a.now().UTC(),
		CourseName: courseName,
	}, nil
}

func cloneCoords(in []models.Coordinate) []models.Coordinate {
	if in == nil {
		return nil
	}
	out := make([]models.Coordinate, len(in))
	copy(out, in)
	return out
}
