package store

import (
	"context"
	"fmt"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	Dir    string
	DSN    string
}

// Open builds the backend named by opts.Driver. Postgres schemas are created on open.
func Open(ctx context.Context, opts Options) (DocumentStore, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(opts.Dir)
	case DriverPostgres:
		pg, err := NewPostgresStore(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := pg.InitSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("%w: unknown store driver %q", models.ErrValidation, opts.Driver)
}
