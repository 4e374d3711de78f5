package viewport

import (
	"context"
	"log/slog"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

// LogCamera is a headless camera that records where it was pointed. It supports region
// animation and bounds fitting, and completes every movement immediately.
type LogCamera struct {
	log     *slog.Logger
	current models.CameraRegion
	moves   int
}

// NewLogCamera starts at the default region.
func NewLogCamera(log *slog.Logger) *LogCamera {
	return &LogCamera{log: log, current: geo.DefaultRegion}
}

// Region returns the last region the camera was moved to.
func (l *LogCamera) Region() models.CameraRegion { return l.current }

// Moves returns the number of camera movements so far.
func (l *LogCamera) Moves() int { return l.moves }

func (l *LogCamera) AnimateToRegion(_ context.Context, region models.CameraRegion, d time.Duration) error {
	l.current = region
	l.moves++
	if l.log != nil {
		l.log.Info("camera_animate",
			"lat", region.Latitude,
			"lng", region.Longitude,
			"lat_delta", region.LatitudeDelta,
			"lng_delta", region.LongitudeDelta,
			"duration_ms", d.Milliseconds(),
		)
	}
	return nil
}

func (l *LogCamera) FitToCoordinates(_ context.Context, coords []models.Coordinate, padding models.EdgePadding, animated bool) error {
	if r, ok := geo.RegionForCoordinates(coords, 1); ok {
		l.current = r
	}
	l.moves++
	if l.log != nil {
		l.log.Info("camera_fit", "points", len(coords), "padding_bottom", padding.Bottom, "animated", animated)
	}
	return nil
}

// WaitIdle returns at once; LogCamera movements are instantaneous.
func (l *LogCamera) WaitIdle(ctx context.Context) error { return ctx.Err() }
