package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(hole int) *models.HoleDocument {
	tee := models.Coordinate{Latitude: 36.480, Longitude: -86.840}
	green := models.Coordinate{Latitude: 36.484, Longitude: -86.836}
	return &models.HoleDocument{
		HoleNumber: hole,
		Par:        models.DefaultPar,
		Tee:        &tee,
		Green:      &green,
		Fairway:    []models.Coordinate{tee, green},
		Hazards: []models.HazardDocument{{Points: []models.Coordinate{
			{Latitude: 1, Longitude: 1}, {Latitude: 1, Longitude: 2}, {Latitude: 2, Longitude: 1},
		}}},
		CreatedAt:  time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		CourseName: "Acme",
	}
}

func TestKeyPaths(t *testing.T) {
	k := NewKey("Pine Valley", 1234, 7)
	assert.Equal(t, "Pine Valley-1234", k.Course.DocID())
	assert.Equal(t, "hole-7", k.DocID())
	assert.Equal(t, "Courses/Pine Valley-1234/Holes/hole-7", k.Path())

	assert.NoError(t, k.Validate())
	assert.ErrorIs(t, NewKey(" ", 1, 1).Validate(), models.ErrValidation)
	assert.ErrorIs(t, NewKey("Acme", 1, 0).Validate(), models.ErrValidation)
}

func backends(t *testing.T) map[string]DocumentStore {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	out := map[string]DocumentStore{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		pg, err := NewPostgresStore(context.Background(), dsn)
		require.NoError(t, err)
		require.NoError(t, pg.InitSchema(context.Background()))
		t.Cleanup(func() { pg.Close() })
		out["postgres"] = pg
	}
	return out
}

func TestDocumentStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			course := CourseKey{Name: "Acme " + t.Name(), ID: time.Now().Nanosecond()}
			key := Key{Course: course, HoleNumber: 3}

			_, err := s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			docs, err := s.List(ctx, course)
			require.NoError(t, err)
			assert.Empty(t, docs)

			want := sampleDoc(3)
			require.NoError(t, s.Put(ctx, key, want))

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, want.Tee, got.Tee)
			assert.Equal(t, want.Fairway, got.Fairway)
			assert.Equal(t, want.Hazards, got.Hazards)
			assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

			// full overwrite
			second := sampleDoc(3)
			second.Hazards = []models.HazardDocument{}
			second.Fairway = second.Fairway[:1]
			require.NoError(t, s.Put(ctx, key, second))
			got, err = s.Get(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, got.Hazards)
			assert.Len(t, got.Fairway, 1)

			require.NoError(t, s.Put(ctx, Key{Course: course, HoleNumber: 1}, sampleDoc(1)))
			docs, err = s.List(ctx, course)
			require.NoError(t, err)
			require.Len(t, docs, 2)
			assert.Equal(t, 1, docs[0].HoleNumber)
			assert.Equal(t, 3, docs[1].HoleNumber)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := NewKey("Acme", 1, 1)
	doc := sampleDoc(1)
	require.NoError(t, s.Put(ctx, key, doc))

	doc.Fairway[0].Latitude = 99
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, got.Fairway[0].Latitude)
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	key := NewKey("../Acme/West", 9, 4)
	require.NoError(t, s.Put(context.Background(), key, sampleDoc(4)))

	path := s.FilePath(key)
	assert.Equal(t, filepath.Join(dir, "_Acme_West-9", "hole-4.json"), path)
	assert.FileExists(t, path)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, Key) (*models.HoleDocument, error) { return nil, f.err }
func (f failingStore) Put(context.Context, Key, *models.HoleDocument) error  { return f.err }
func (f failingStore) List(context.Context, CourseKey) ([]*models.HoleDocument, error) {
	return nil, f.err
}
func (f failingStore) Close() error { return nil }

func TestGatewayLoad(t *testing.T) {
	ctx := context.Background()
	key := NewKey("Acme", 1, 1)

	mem := NewMemoryStore()
	g := NewGateway(mem, nil)
	assert.Nil(t, g.Load(ctx, key))

	require.NoError(t, mem.Put(ctx, key, sampleDoc(1)))
	doc := g.Load(ctx, key)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.HoleNumber)

	broken := NewGateway(failingStore{errors.New("connection refused")}, nil)
	assert.Nil(t, broken.Load(ctx, key))
}

func TestGatewaySave(t *testing.T) {
	ctx := context.Background()
	key := NewKey("Acme", 1, 2)

	t.Run("ok", func(t *testing.T) {
		mem := NewMemoryStore()
		require.NoError(t, NewGateway(mem, nil).Save(ctx, key, sampleDoc(2)))
		_, err := mem.Get(ctx, key)
		assert.NoError(t, err)
	})

	t.Run("backend failure", func(t *testing.T) {
		err := NewGateway(failingStore{errors.New("disk full")}, nil).Save(ctx, key, sampleDoc(2))
		assert.ErrorIs(t, err, models.ErrIO)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("invalid", func(t *testing.T) {
		g := NewGateway(NewMemoryStore(), nil)
		assert.ErrorIs(t, g.Save(ctx, key, sampleDoc(5)), models.ErrValidation)
		assert.ErrorIs(t, g.Save(ctx, key, nil), models.ErrValidation)
		assert.ErrorIs(t, g.Save(ctx, NewKey("", 1, 2), sampleDoc(2)), models.ErrValidation)
	})

	t.Run("list failure", func(t *testing.T) {
		_, err := NewGateway(failingStore{errors.New("timeout")}, nil).List(ctx, key.Course)
		assert.ErrorIs(t, err, models.ErrIO)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Driver: "firestore"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
