// Package viewport drives a map camera: fitting a hole's geometry, zooming onto it and
// centering on fallback targets.
//
// Cameras expose their capabilities by implementing RegionAnimator, BoundsFitter and
// IdleWaiter. None is required; every call checks for the capability at runtime and
// falls back or reports models.ErrCapabilityUnavailable.
package viewport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/geometry"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

// RegionAnimator moves the camera to a region.
type RegionAnimator interface {
	AnimateToRegion(ctx context.Context, region models.CameraRegion, duration time.Duration) error
}

// BoundsFitter moves the camera so all coordinates are visible inside the padding.
type BoundsFitter interface {
	FitToCoordinates(ctx context.Context, coords []models.Coordinate, padding models.EdgePadding, animated bool) error
}

// IdleWaiter blocks until the camera's current animation has finished.
type IdleWaiter interface {
	WaitIdle(ctx context.Context) error
}

// Clock abstracts the settle wait so tests don't sleep.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Options tunes the controller.
type Options struct {
	// EdgePadding is used for bounds fitting. The bottom is larger to clear the control panel.
	EdgePadding models.EdgePadding
	// RegionPadding widens the bounding box in ZoomToHole.
	RegionPadding float64
	// AnimationDuration is passed to region animations.
	AnimationDuration time.Duration
	// SettleDelay is waited after a bounds fit when the camera cannot report completion.
	SettleDelay time.Duration
	// DefaultRegion is shown by ZoomOut when there is no tee.
	DefaultRegion models.CameraRegion
}

// DefaultOptions returns the tuning used by the mapper.
func DefaultOptions() Options {
	return Options{
		EdgePadding:       models.EdgePadding{Top: 60, Right: 40, Bottom: 220, Left: 40},
		RegionPadding:     geo.DefaultFitPadding,
		AnimationDuration: 500 * time.Millisecond,
		SettleDelay:       600 * time.Millisecond,
		DefaultRegion:     geo.DefaultRegion,
	}
}

// Controller issues camera movements. It is driven from a single event loop and is not
// safe for concurrent use.
type Controller struct {
	camera     any
	opts       Options
	clock      Clock
	log        *slog.Logger
	fitPending bool
}

// NewController wraps camera, which may implement any subset of the capability interfaces
// or be nil.
func NewController(camera any, opts Options, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{camera: camera, opts: opts, clock: realClock{}, log: log}
}

// WithClock replaces the clock used for the settle delay.
func (c *Controller) WithClock(clock Clock) *Controller {
	c.clock = clock
	return c
}

// Options returns the controller's tuning.
func (c *Controller) Options() Options { return c.opts }

// CanAnimate reports whether the camera supports region animation.
func (c *Controller) CanAnimate() bool {
	_, ok := c.camera.(RegionAnimator)
	return ok
}

// CanFit reports whether the camera supports bounds fitting.
func (c *Controller) CanFit() bool {
	_, ok := c.camera.(BoundsFitter)
	return ok
}

// FitToAll fits every captured coordinate, committed and in-progress hazards included.
// It returns true when the camera was moved.
func (c *Controller) FitToAll(ctx context.Context, g geometry.HoleGeometry, animated bool) (bool, error) {
	coords := g.AllCoordinates()
	if len(coords) == 0 {
		return false, nil
	}
	fitter, ok := c.camera.(BoundsFitter)
	if !ok {
		c.log.Debug("viewport_fit_skipped", "reason", "no_bounds_fitting")
		return false, nil
	}
	if err := c.fit(ctx, fitter, coords, animated); err != nil {
		return false, err
	}
	return true, nil
}

// ZoomOut centers on tee with a span of ZoomOutBaseSpan*factor, or shows the default region
// when there is no tee.
func (c *Controller) ZoomOut(ctx context.Context, tee *models.Coordinate, factor float64) error {
	region := c.opts.DefaultRegion
	if tee != nil {
		region = geo.RegionAround(*tee, geo.ZoomOutBaseSpan*factor)
	}
	return c.animate(ctx, region)
}

// ZoomToHole frames the hole's coordinates and tightens the view by zoomMultiplier.
// Cameras without region animation get a bounds fit instead.
func (c *Controller) ZoomToHole(ctx context.Context, g geometry.HoleGeometry, zoomMultiplier float64) error {
	coords := g.AllCoordinates()
	base, ok := geo.RegionForCoordinates(coords, c.opts.RegionPadding)
	if !ok {
		return nil
	}
	region := geo.Scale(base, zoomMultiplier)

	if c.CanAnimate() {
		return c.animate(ctx, region)
	}
	if fitter, ok := c.camera.(BoundsFitter); ok {
		return c.fit(ctx, fitter, coords, true)
	}
	return fmt.Errorf("%w: camera can neither animate nor fit", models.ErrCapabilityUnavailable)
}

// CenterOn animates straight to region.
func (c *Controller) CenterOn(ctx context.Context, region models.CameraRegion) error {
	return c.animate(ctx, region)
}

// FitThenFocus fits the whole hole and then tightens onto focus once the fit has settled.
func (c *Controller) FitThenFocus(ctx context.Context, g geometry.HoleGeometry, focus models.CameraRegion) error {
	if _, err := c.FitToAll(ctx, g, true); err != nil {
		c.log.Warn("viewport_fit_failed", "err", err)
	}
	return c.animate(ctx, focus)
}

// Settle waits for a preceding bounds fit to finish. Cameras implementing IdleWaiter are
// asked directly; others get the fixed settle delay, which only approximates ordering.
func (c *Controller) Settle(ctx context.Context) error {
	if w, ok := c.camera.(IdleWaiter); ok {
		return w.WaitIdle(ctx)
	}
	if c.opts.SettleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.opts.SettleDelay):
		return nil
	}
}

func (c *Controller) fit(ctx context.Context, fitter BoundsFitter, coords []models.Coordinate, animated bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fitter.FitToCoordinates(ctx, coords, c.opts.EdgePadding, animated); err != nil {
		return fmt.Errorf("%w: fit to coordinates: %w", models.ErrCapabilityUnavailable, err)
	}
	c.fitPending = animated
	c.log.Debug("viewport_fit", "points", len(coords), "animated", animated)
	return nil
}

func (c *Controller) animate(ctx context.Context, region models.CameraRegion) error {
	animator, ok := c.camera.(RegionAnimator)
	if !ok {
		return fmt.Errorf("%w: camera cannot animate to a region", models.ErrCapabilityUnavailable)
	}
	if c.fitPending {
		c.fitPending = false
		if err := c.Settle(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := animator.AnimateToRegion(ctx, region, c.opts.AnimationDuration); err != nil {
		return fmt.Errorf("%w: animate to region: %w", models.ErrCapabilityUnavailable, err)
	}
	c.log.Debug("viewport_animate",
		"lat", region.Latitude,
		"lng", region.Longitude,
		"lat_delta", region.LatitudeDelta,
		"lng_delta", region.LongitudeDelta,
	)
	return nil
}
