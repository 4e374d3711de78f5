package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	_ "github.com/lib/pq"
)

// PostgresStore keeps hole documents as JSONB rows keyed by course document id and hole
// number.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and pings a connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// InitSchema creates the table and its course index.
func (p *PostgresStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS hole_documents (
			course_doc_id TEXT NOT NULL,
			hole_number   INTEGER NOT NULL,
			body          JSONB NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (course_doc_id, hole_number)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_hole_documents_course ON hole_documents (course_doc_id);`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key Key) (*models.HoleDocument, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT body FROM hole_documents WHERE course_doc_id = $1 AND hole_number = $2`,
		key.Course.DocID(), key.HoleNumber,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	var doc models.HoleDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

func (p *PostgresStore) Put(ctx context.Context, key Key, doc *models.HoleDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO hole_documents (course_doc_id, hole_number, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (course_doc_id, hole_number)
		DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, key.Course.DocID(), key.HoleNumber, body)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (p *PostgresStore) List(ctx context.Context, course CourseKey) ([]*models.HoleDocument, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT body FROM hole_documents WHERE course_doc_id = $1 ORDER BY hole_number`,
		course.DocID(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	results := []*models.HoleDocument{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var doc models.HoleDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		results = append(results, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of stored holes across all courses.
func (p *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hole_documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
