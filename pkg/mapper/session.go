// Package mapper runs one hole-mapping screen: it loads the saved hole, frames the camera,
// records taps and exports the result.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/1F47E/golf-hole-mapper/pkg/geometry"
	"github.com/1F47E/golf-hole-mapper/pkg/index"
	"github.com/1F47E/golf-hole-mapper/pkg/locate"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/1F47E/golf-hole-mapper/pkg/viewport"
	"github.com/google/uuid"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("session closed")

// Notifier shows a message to the user.
type Notifier interface {
	Alert(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Alert(title, message string) { f(title, message) }

// Alert titles.
const (
	TitleHazard  = "Hazard"
	TitleMissing = "Missing data"
	TitleSuccess = "Success"
	TitleError   = "Error"
)

// Deps are the collaborators of a session. Gateway and Controller are required.
type Deps struct {
	Gateway    *store.Gateway
	Controller *viewport.Controller
	Location   locate.Provider
	Notifier   Notifier
	// Index, when set, receives the pins of every saved hole.
	Index *index.HoleIndex
	Log   *slog.Logger
}

// Options tunes camera actions.
type Options struct {
	ZoomMultiplier float64
	ZoomOutFactor  float64
	Locate         locate.Options
}

func DefaultOptions() Options {
	return Options{
		ZoomMultiplier: 0.6,
		ZoomOutFactor:  2,
		Locate:         locate.DefaultOptions(),
	}
}

// Session is one open hole screen. Calls are expected from a single event loop; Close may
// be called from any goroutine and stops pending work at its next resumption point.
type Session struct {
	ID  uuid.UUID
	key store.Key

	acc      *geometry.Accumulator
	ctrl     *viewport.Controller
	chain    *locate.Chain
	gateway  *store.Gateway
	notifier Notifier
	index    *index.HoleIndex
	opts     Options
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

// NewSession prepares a session for key. Nothing is loaded until Open.
func NewSession(key store.Key, deps Deps, opts Options) (*Session, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if deps.Gateway == nil || deps.Controller == nil {
		return nil, fmt.Errorf("%w: session needs a gateway and a viewport controller", models.ErrValidation)
	}
	log := deps.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(title, message string) {
			log.Info("alert", "title", title, "message", message)
		})
	}

	id := uuid.New()
	log = log.With("session", id.String(), "hole", key.Path())
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:       id,
		key:      key,
		acc:      geometry.NewAccumulator(),
		ctrl:     deps.Controller,
		chain:    locate.NewChain(deps.Controller, deps.Location, opts.Locate, log),
		gateway:  deps.Gateway,
		notifier: notifier,
		index:    deps.Index,
		opts:     opts,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Key returns the document key the session edits.
func (s *Session) Key() store.Key { return s.key }

// Open loads the saved hole, hydrates the geometry and runs the location fallback chain.
func (s *Session) Open(ctx context.Context) (locate.Decision, error) {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return locate.Decision{}, err
	}

	doc := s.gateway.Load(ctx, s.key)
	if err := s.active(ctx); err != nil {
		return locate.Decision{}, err
	}
	if doc != nil {
		s.acc.Hydrate(doc)
		s.log.Info("hole_hydrated", "fairway_points", len(doc.Fairway), "hazards", len(doc.Hazards))
	}
	return s.chain.OnLoad(ctx, s.acc.Snapshot())
}

// Mode returns the active capture mode.
func (s *Session) Mode() models.CaptureMode { return s.acc.Mode() }

// SetMode switches the capture mode.
func (s *Session) SetMode(m models.CaptureMode) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.acc.SetMode(m)
	return nil
}

// Tap records a map tap in the active mode.
func (s *Session) Tap(c models.Coordinate) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.acc.Tap(c)
}

// FinishHazard commits the in-progress hazard, alerting when it has too few points.
func (s *Session) FinishHazard() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.acc.FinishHazard(); err != nil {
		s.notifier.Alert(TitleHazard, fmt.Sprintf("Add at least %d points to define a hazard", geometry.MinHazardPoints))
		return err
	}
	return nil
}

// Geometry returns a snapshot of the captured geometry.
func (s *Session) Geometry() geometry.HoleGeometry { return s.acc.Snapshot() }

// LastKnownLocation returns the last user position the session centered on.
func (s *Session) LastKnownLocation() (models.Coordinate, bool) { return s.chain.LastKnown() }

// Export validates and saves the hole. Validation and save failures are alerted and leave
// the geometry as it was so the user can fix it and retry.
func (s *Session) Export(ctx context.Context) (*models.HoleDocument, error) {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return nil, err
	}

	doc, err := s.acc.ToDocument(s.key.HoleNumber, s.key.Course.Name)
	if err != nil {
		s.notifier.Alert(TitleMissing, fmt.Sprintf("You must set tee, green, and fairway (at least %d points).", geometry.MinFairwayPoints))
		return nil, err
	}

	err = s.gateway.Save(ctx, s.key, doc)
	if aerr := s.active(ctx); aerr != nil {
		return nil, aerr
	}
	if err != nil {
		s.notifier.Alert(TitleError, "Failed to save hole data.")
		return nil, err
	}

	if s.index != nil {
		s.index.IndexDocuments(s.key.Course.DocID(), []*models.HoleDocument{doc})
	}
	s.notifier.Alert(TitleSuccess, "Hole data saved")
	return doc, nil
}

// CenterOnMe runs the location fallback chain without the tee step.
func (s *Session) CenterOnMe(ctx context.Context) (locate.Decision, error) {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return locate.Decision{}, err
	}
	return s.chain.CenterOnMe(ctx, s.acc.Snapshot())
}

// FitToAll fits every captured coordinate.
func (s *Session) FitToAll(ctx context.Context) (bool, error) {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return false, err
	}
	return s.ctrl.FitToAll(ctx, s.acc.Snapshot(), true)
}

// ZoomToHole frames the captured geometry tightly.
func (s *Session) ZoomToHole(ctx context.Context) error {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return err
	}
	return s.ctrl.ZoomToHole(ctx, s.acc.Snapshot(), s.opts.ZoomMultiplier)
}

// ZoomOut pulls back around the tee, or to the default region without one.
func (s *Session) ZoomOut(ctx context.Context) error {
	ctx, done := s.scope(ctx)
	defer done()
	if err := s.active(ctx); err != nil {
		return err
	}
	return s.ctrl.ZoomOut(ctx, s.acc.Snapshot().Tee, s.opts.ZoomOutFactor)
}

// Close stops pending work. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.chain.Cancel()
	s.log.Debug("session_closed")
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// active reports ErrClosed after Close, or the context's error.
func (s *Session) active(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return ctx.Err()
}

// scope derives a context that is also cancelled by Close.
func (s *Session) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
