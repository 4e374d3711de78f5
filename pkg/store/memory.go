package store

import (
	"context"
	"sort"
	"sync"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

// MemoryStore keeps documents in a map. Documents are copied on the way in and out.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[int]models.HoleDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[int]models.HoleDocument)}
}

func (m *MemoryStore) Get(ctx context.Context, key Key) (*models.HoleDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key.Course.DocID()][key.HoleNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(&doc), nil
}

func (m *MemoryStore) Put(ctx context.Context, key Key, doc *models.HoleDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	holes, ok := m.docs[key.Course.DocID()]
	if !ok {
		holes = make(map[int]models.HoleDocument)
		m.docs[key.Course.DocID()] = holes
	}
	holes[key.HoleNumber] = *copyDocument(doc)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, course CourseKey) ([]*models.HoleDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	holes := m.docs[course.DocID()]
	out := make([]*models.HoleDocument, 0, len(holes))
	for _, doc := range holes {
		out = append(out, copyDocument(&doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoleNumber < out[j].HoleNumber })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func copyDocument(doc *models.HoleDocument) *models.HoleDocument {
	out := *doc
	if doc.Tee != nil {
		t := *doc.Tee
		out.Tee = &t
	}
	if doc.Green != nil {
		g := *doc.Green
		out.Green = &g
	}
	if doc.Fairway != nil {
		out.Fairway = append([]models.Coordinate(nil), doc.Fairway...)
	}
	if doc.Hazards != nil {
		out.Hazards = make([]models.HazardDocument, len(doc.Hazards))
		for i, h := range doc.Hazards {
			out.Hazards[i] = models.HazardDocument{Points: append([]models.Coordinate(nil), h.Points...)}
		}
	}
	return &out
}
