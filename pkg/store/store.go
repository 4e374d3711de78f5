// Package store persists hole documents under the composite key
// Courses/<courseName>-<courseId>/Holes/hole-<holeNumber>.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/1F47E/golf-hole-mapper/pkg/metrics"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

const (
	CoursesCollection = "Courses"
	HolesCollection   = "Holes"
)

// ErrNotFound is returned by a DocumentStore when no document exists at a key.
var ErrNotFound = errors.New("document not found")

// CourseKey identifies a course document.
type CourseKey struct {
	Name string
	ID   int
}

// DocID is the course document id, "<name>-<id>".
func (c CourseKey) DocID() string { return fmt.Sprintf("%s-%d", c.Name, c.ID) }

// Key identifies one hole document.
type Key struct {
	Course     CourseKey
	HoleNumber int
}

func NewKey(courseName string, courseID, holeNumber int) Key {
	return Key{Course: CourseKey{Name: courseName, ID: courseID}, HoleNumber: holeNumber}
}

// DocID is the hole document id, "hole-<n>".
func (k Key) DocID() string { return fmt.Sprintf("hole-%d", k.HoleNumber) }

// Path is the full document path.
func (k Key) Path() string {
	return strings.Join([]string{CoursesCollection, k.Course.DocID(), HolesCollection, k.DocID()}, "/")
}

func (k Key) String() string { return k.Path() }

// Validate rejects keys that cannot address a document.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Course.Name) == "" {
		return fmt.Errorf("%w: course name is required", models.ErrValidation)
	}
	if k.HoleNumber < 1 {
		return fmt.Errorf("%w: hole number must be positive, got %d", models.ErrValidation, k.HoleNumber)
	}
	return nil
}

// DocumentStore is a hole document backend. Put overwrites the whole document.
type DocumentStore interface {
	Get(ctx context.Context, key Key) (*models.HoleDocument, error)
	Put(ctx context.Context, key Key, doc *models.HoleDocument) error
	// List returns a course's holes ordered by hole number.
	List(ctx context.Context, course CourseKey) ([]*models.HoleDocument, error)
	Close() error
}

// Gateway is the mapper's view of a DocumentStore: loads degrade to "no document" and
// save failures are reported as models.ErrIO.
type Gateway struct {
	store DocumentStore
	log   *slog.Logger
}

func NewGateway(store DocumentStore, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{store: store, log: log}
}

// Load returns the document at key, or nil when it is missing or cannot be read.
func (g *Gateway) Load(ctx context.Context, key Key) *models.HoleDocument {
	doc, err := g.store.Get(ctx, key)
	switch {
	case err == nil:
		metrics.HoleLoadsTotal.WithLabelValues("found").Inc()
		return doc
	case errors.Is(err, ErrNotFound):
		metrics.HoleLoadsTotal.WithLabelValues("absent").Inc()
		g.log.Debug("hole_not_found", "key", key.Path())
	default:
		metrics.HoleLoadsTotal.WithLabelValues("error").Inc()
		g.log.Warn("hole_load_failed", "key", key.Path(), "err", err)
	}
	return nil
}

// Save overwrites the document at key.
func (g *Gateway) Save(ctx context.Context, key Key, doc *models.HoleDocument) error {
	if err := key.Validate(); err != nil {
		metrics.HoleSavesTotal.WithLabelValues("invalid").Inc()
		return err
	}
	if doc == nil {
		metrics.HoleSavesTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: nil document", models.ErrValidation)
	}
	if doc.HoleNumber != key.HoleNumber {
		metrics.HoleSavesTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: document hole %d does not match key hole %d",
			models.ErrValidation, doc.HoleNumber, key.HoleNumber)
	}
	if err := g.store.Put(ctx, key, doc); err != nil {
		metrics.HoleSavesTotal.WithLabelValues("error").Inc()
		g.log.Error("hole_save_failed", "key", key.Path(), "err", err)
		return fmt.Errorf("%w: save %s: %w", models.ErrIO, key.Path(), err)
	}
	metrics.HoleSavesTotal.WithLabelValues("ok").Inc()
	g.log.Info("hole_saved", "key", key.Path(), "fairway_points", len(doc.Fairway), "hazards", len(doc.Hazards))
	return nil
}

// List returns the saved holes of a course.
func (g *Gateway) List(ctx context.Context, course CourseKey) ([]*models.HoleDocument, error) {
	docs, err := g.store.List(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", models.ErrIO, course.DocID(), err)
	}
	return docs, nil
}
