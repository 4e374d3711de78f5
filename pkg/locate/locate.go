// Package locate picks the first camera target after a hole screen loads: the tee, the
// user's position, the fairway, and finally the deployment default.
package locate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/geometry"
	"github.com/1F47E/golf-hole-mapper/pkg/metrics"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/viewport"
)

// ErrSuperseded is returned when a newer run or Cancel invalidated a pending run.
var ErrSuperseded = errors.New("location run superseded")

// Fix is a single position sample.
type Fix struct {
	Coordinate models.Coordinate
	Timestamp  time.Time
	// Accuracy in meters, zero when unknown.
	Accuracy float64
}

// Provider returns the device position. Implementations must take a fresh high accuracy
// sample rather than return a cached one. Missing permissions or hardware are reported
// with an error wrapping models.ErrCapabilityUnavailable.
type Provider interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Fix, error)

func (f ProviderFunc) CurrentPosition(ctx context.Context) (Fix, error) { return f(ctx) }

// Static always reports the same position, stamped with the current time.
func Static(c models.Coordinate) Provider {
	return ProviderFunc(func(context.Context) (Fix, error) {
		return Fix{Coordinate: c, Timestamp: time.Now()}, nil
	})
}

// Step identifies which fallback produced the camera target.
type Step int

const (
	StepTee Step = iota + 1
	StepUserLocation
	StepFairway
	StepDefault
)

func (s Step) String() string {
	switch s {
	case StepTee:
		return "tee"
	case StepUserLocation:
		return "user_location"
	case StepFairway:
		return "fairway"
	case StepDefault:
		return "default"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Decision is the outcome of a chain run.
type Decision struct {
	Step   Step
	Region models.CameraRegion
}

// Options tunes the chain.
type Options struct {
	// Timeout bounds a single position request.
	Timeout time.Duration
	// MaxFixAge rejects samples older than this. Zero disables the check.
	MaxFixAge time.Duration
	// PointSpan is the span used around the tee and the user position.
	PointSpan float64
	// FairwaySpan is the span used around the first fairway point.
	FairwaySpan float64
}

func DefaultOptions() Options {
	return Options{
		Timeout:     10 * time.Second,
		MaxFixAge:   30 * time.Second,
		PointSpan:   geo.PointSpan,
		FairwaySpan: geo.FairwaySpan,
	}
}

// Chain runs the fallback procedure against a viewport controller. Runs are driven from one
// goroutine at a time; Cancel and LastKnown may be called from anywhere.
type Chain struct {
	ctrl     *viewport.Controller
	provider Provider
	opts     Options
	log      *slog.Logger
	now      func() time.Time

	generation atomic.Uint64

	mu        sync.Mutex
	lastKnown *models.Coordinate
}

// NewChain builds a chain. provider may be nil when the device has no location service.
func NewChain(ctrl *viewport.Controller, provider Provider, opts Options, log *slog.Logger) *Chain {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Chain{ctrl: ctrl, provider: provider, opts: opts, log: log, now: time.Now}
}

// LastKnown returns the most recent accepted user position.
func (c *Chain) LastKnown() (models.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown == nil {
		return models.Coordinate{}, false
	}
	return *c.lastKnown, true
}

// Cancel invalidates any run in flight. A cancelled run stops at its next resumption point
// without touching the camera or the last known position.
func (c *Chain) Cancel() { c.generation.Add(1) }

// OnLoad runs the full chain for freshly hydrated geometry.
func (c *Chain) OnLoad(ctx context.Context, g geometry.HoleGeometry) (Decision, error) {
	gen := c.generation.Add(1)
	if g.Tee != nil {
		region := geo.RegionAround(*g.Tee, c.opts.PointSpan)
		err := c.ctrl.CenterOn(ctx, region)
		if err == nil {
			return c.decided(StepTee, region), nil
		}
		if cerr := c.current(ctx, gen); cerr != nil {
			return Decision{}, cerr
		}
		c.log.Warn("fallback_step_failed", "step", StepTee, "err", err)
	}
	return c.fromLocation(ctx, gen, g)
}

// CenterOnMe runs the chain without the tee step.
func (c *Chain) CenterOnMe(ctx context.Context, g geometry.HoleGeometry) (Decision, error) {
	return c.fromLocation(ctx, c.generation.Add(1), g)
}

func (c *Chain) fromLocation(ctx context.Context, gen uint64, g geometry.HoleGeometry) (Decision, error) {
	fix, err := c.position(ctx)
	if cerr := c.current(ctx, gen); cerr != nil {
		return Decision{}, cerr
	}
	if err == nil {
		region := geo.RegionAround(fix.Coordinate, c.opts.PointSpan)
		c.remember(fix.Coordinate)
		if err = c.ctrl.CenterOn(ctx, region); err == nil {
			return c.decided(StepUserLocation, region), nil
		}
		if cerr := c.current(ctx, gen); cerr != nil {
			return Decision{}, cerr
		}
	}
	c.log.Warn("fallback_step_failed", "step", StepUserLocation, "err", err)

	if len(g.Fairway) > 0 {
		region := geo.RegionAround(g.Fairway[0], c.opts.FairwaySpan)
		err := c.ctrl.CenterOn(ctx, region)
		if err == nil {
			return c.decided(StepFairway, region), nil
		}
		if cerr := c.current(ctx, gen); cerr != nil {
			return Decision{}, cerr
		}
		c.log.Warn("fallback_step_failed", "step", StepFairway, "err", err)
	}

	region := c.ctrl.Options().DefaultRegion
	if err := c.ctrl.CenterOn(ctx, region); err != nil {
		if cerr := c.current(ctx, gen); cerr != nil {
			return Decision{}, cerr
		}
		c.log.Warn("fallback_default_unreachable", "err", err)
	}
	return c.decided(StepDefault, region), nil
}

// position asks the provider for a fix within the timeout. Stale samples are rejected.
func (c *Chain) position(ctx context.Context) (Fix, error) {
	if c.provider == nil {
		return Fix{}, fmt.Errorf("%w: no location provider", models.ErrCapabilityUnavailable)
	}
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	fix, err := c.provider.CurrentPosition(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %w", models.ErrCapabilityUnavailable, err)
	}
	if c.opts.MaxFixAge > 0 && !fix.Timestamp.IsZero() {
		if age := c.now().Sub(fix.Timestamp); age > c.opts.MaxFixAge {
			return Fix{}, fmt.Errorf("%w: stale fix (%s old)", models.ErrCapabilityUnavailable, age.Round(time.Second))
		}
	}
	return fix, nil
}

// current reports whether the run that started as gen may still act.
func (c *Chain) current(ctx context.Context, gen uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.generation.Load() != gen {
		return ErrSuperseded
	}
	return nil
}

func (c *Chain) remember(p models.Coordinate) {
	c.mu.Lock()
	c.lastKnown = &p
	c.mu.Unlock()
}

func (c *Chain) decided(step Step, region models.CameraRegion) Decision {
	metrics.FallbackStepsTotal.WithLabelValues(step.String()).Inc()
	c.log.Info("fallback_step", "step", step, "lat", region.Latitude, "lng", region.Longitude)
	return Decision{Step: step, Region: region}
}
