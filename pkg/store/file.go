package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

// FileStore writes each hole as <dir>/<courseName>-<courseId>/hole-<n>.json.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (f *FileStore) Dir() string { return f.dir }

// FilePath returns where the document for key lives on disk.
func (f *FileStore) FilePath(key Key) string {
	return filepath.Join(f.courseDir(key.Course), key.DocID()+".json")
}

func (f *FileStore) courseDir(c CourseKey) string {
	return filepath.Join(f.dir, safeName(c.DocID()))
}

func (f *FileStore) Get(ctx context.Context, key Key) (*models.HoleDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readDocument(f.FilePath(key))
}

// Put writes through a temp file and rename so readers never see a partial document.
func (f *FileStore) Put(ctx context.Context, key Key, doc *models.HoleDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := f.courseDir(key.Course)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, key.DocID()+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.FilePath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}

func (f *FileStore) List(ctx context.Context, course CourseKey) ([]*models.HoleDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.courseDir(course))
	if errors.Is(err, fs.ErrNotExist) {
		return []*models.HoleDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read course directory: %w", err)
	}

	out := make([]*models.HoleDocument, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "hole-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		doc, err := readDocument(filepath.Join(f.courseDir(course), name))
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoleNumber < out[j].HoleNumber })
	return out, nil
}

func (f *FileStore) Close() error { return nil }

func readDocument(path string) (*models.HoleDocument, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc models.HoleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &doc, nil
}

// safeName keeps course names from escaping the store directory.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.TrimLeft(s, "."))
}
