package locate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/geometry"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type camera struct {
	regions []models.CameraRegion
	fail    int // number of leading animations to fail
}

func (c *camera) AnimateToRegion(_ context.Context, r models.CameraRegion, _ time.Duration) error {
	if c.fail > 0 {
		c.fail--
		return errors.New("camera detached")
	}
	c.regions = append(c.regions, r)
	return nil
}

func c(lat, lng float64) models.Coordinate {
	return models.Coordinate{Latitude: lat, Longitude: lng}
}

var unavailable = ProviderFunc(func(context.Context) (Fix, error) {
	return Fix{}, models.ErrCapabilityUnavailable
})

func newChain(cam *camera, p Provider) *Chain {
	ctrl := viewport.NewController(cam, viewport.DefaultOptions(), nil)
	return NewChain(ctrl, p, DefaultOptions(), nil)
}

func TestOnLoad(t *testing.T) {
	tee := c(36.48, -86.84)
	user := c(40, -70)

	testCases := []struct {
		name     string
		geom     geometry.HoleGeometry
		provider Provider
		want     Step
		center   models.Coordinate
		span     float64
	}{
		{
			name:     "tee wins",
			geom:     geometry.HoleGeometry{Tee: &tee, Fairway: []models.Coordinate{c(5, 5)}},
			provider: Static(user),
			want:     StepTee,
			center:   tee,
			span:     geo.PointSpan,
		},
		{
			name:     "user location",
			geom:     geometry.HoleGeometry{Fairway: []models.Coordinate{c(5, 5)}},
			provider: Static(user),
			want:     StepUserLocation,
			center:   user,
			span:     geo.PointSpan,
		},
		{
			name:     "fairway when location unavailable",
			geom:     geometry.HoleGeometry{Fairway: []models.Coordinate{c(5, 5)}},
			provider: unavailable,
			want:     StepFairway,
			center:   c(5, 5),
			span:     geo.FairwaySpan,
		},
		{
			name:   "fairway without provider",
			geom:   geometry.HoleGeometry{Fairway: []models.Coordinate{c(5, 5), c(6, 6)}},
			want:   StepFairway,
			center: c(5, 5),
			span:   geo.FairwaySpan,
		},
		{
			name:     "default region",
			provider: unavailable,
			want:     StepDefault,
			center:   geo.DefaultRegion.Center(),
			span:     geo.DefaultRegion.LatitudeDelta,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cam := &camera{}
			d, err := newChain(cam, tc.provider).OnLoad(context.Background(), tc.geom)
			require.NoError(t, err)

			assert.Equal(t, tc.want, d.Step)
			assert.Equal(t, tc.center, d.Region.Center())
			assert.Equal(t, tc.span, d.Region.LatitudeDelta)
			require.Len(t, cam.regions, 1)
			assert.Equal(t, d.Region, cam.regions[0])
		})
	}
}

func TestOnLoadSkipsProviderWhenTeePresent(t *testing.T) {
	called := false
	p := ProviderFunc(func(context.Context) (Fix, error) {
		called = true
		return Fix{}, nil
	})
	tee := c(1, 1)
	_, err := newChain(&camera{}, p).OnLoad(context.Background(), geometry.HoleGeometry{Tee: &tee})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestCameraFailureFallsThrough(t *testing.T) {
	cam := &camera{fail: 1}
	tee := c(1, 1)
	d, err := newChain(cam, unavailable).OnLoad(context.Background(), geometry.HoleGeometry{
		Tee:     &tee,
		Fairway: []models.Coordinate{c(5, 5)},
	})
	require.NoError(t, err)
	assert.Equal(t, StepFairway, d.Step)
}

func TestDefaultStepNeverFails(t *testing.T) {
	cam := &camera{fail: 10}
	d, err := newChain(cam, unavailable).OnLoad(context.Background(), geometry.HoleGeometry{})
	require.NoError(t, err)
	assert.Equal(t, StepDefault, d.Step)
	assert.Empty(t, cam.regions)
}

func TestCenterOnMe(t *testing.T) {
	tee := c(1, 1)
	g := geometry.HoleGeometry{Tee: &tee}

	t.Run("records last known location", func(t *testing.T) {
		cam := &camera{}
		chain := newChain(cam, Static(c(2, 2)))
		_, ok := chain.LastKnown()
		assert.False(t, ok)

		d, err := chain.CenterOnMe(context.Background(), g)
		require.NoError(t, err)
		assert.Equal(t, StepUserLocation, d.Step)

		last, ok := chain.LastKnown()
		require.True(t, ok)
		assert.Equal(t, c(2, 2), last)
	})

	t.Run("ignores tee", func(t *testing.T) {
		d, err := newChain(&camera{}, nil).CenterOnMe(context.Background(), g)
		require.NoError(t, err)
		assert.Equal(t, StepDefault, d.Step)
	})
}

func TestStaleFixRejected(t *testing.T) {
	chain := newChain(&camera{}, ProviderFunc(func(context.Context) (Fix, error) {
		return Fix{Coordinate: c(2, 2), Timestamp: time.Now().Add(-time.Hour)}, nil
	}))
	d, err := chain.OnLoad(context.Background(), geometry.HoleGeometry{Fairway: []models.Coordinate{c(5, 5)}})
	require.NoError(t, err)
	assert.Equal(t, StepFairway, d.Step)

	_, ok := chain.LastKnown()
	assert.False(t, ok)
}

func TestPositionTimeout(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context) (Fix, error) {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	})
	opts := DefaultOptions()
	opts.Timeout = 10 * time.Millisecond
	chain := NewChain(viewport.NewController(&camera{}, viewport.DefaultOptions(), nil), slow, opts, nil)

	d, err := chain.OnLoad(context.Background(), geometry.HoleGeometry{Fairway: []models.Coordinate{c(5, 5)}})
	require.NoError(t, err)
	assert.Equal(t, StepFairway, d.Step)
}

func TestCancelStopsPendingRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := ProviderFunc(func(context.Context) (Fix, error) {
		close(started)
		<-release
		return Fix{Coordinate: c(2, 2), Timestamp: time.Now()}, nil
	})
	cam := &camera{}
	chain := newChain(cam, p)

	type result struct {
		d   Decision
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := chain.OnLoad(context.Background(), geometry.HoleGeometry{})
		done <- result{d, err}
	}()

	<-started
	chain.Cancel()
	close(release)

	res := <-done
	assert.ErrorIs(t, res.err, ErrSuperseded)
	assert.Empty(t, cam.regions)
	_, ok := chain.LastKnown()
	assert.False(t, ok)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cam := &camera{}
	_, err := newChain(cam, unavailable).OnLoad(ctx, geometry.HoleGeometry{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cam.regions)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "user_location", StepUserLocation.String())
	assert.Equal(t, "Step(9)", Step(9).String())
}
