package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore stores documents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc models.Document) error {
	if err := checkSavable(doc); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			language = EXCLUDED.language,
			tone = EXCLUDED.tone,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.Title, string(doc.Category), doc.Language, string(doc.Tone), doc.Content,
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		slog.Error("PostgresStore SaveDocument failed", "error", err, "id", doc.ID)
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	slog.Debug("PostgresStore SaveDocument succeeded", "id", doc.ID)
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("PostgresStore GetDocument not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetDocument failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *PostgresStore) UpdateDocumentContent(ctx context.Context, id, content string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE documents SET content = $1, updated_at = $2 WHERE id = $3 RETURNING `+documentColumns,
		content, time.Now().UTC(), id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		slog.Error("PostgresStore UpdateDocumentContent failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update document %s: %w", id, err)
	}
	slog.Debug("PostgresStore UpdateDocumentContent succeeded", "id", id, "length", len(content))
	return &doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		slog.Error("PostgresStore ListDocuments query failed", "error", err)
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		slog.Error("PostgresStore ListDocuments scan failed", "error", err)
		return nil, err
	}
	slog.Debug("PostgresStore ListDocuments succeeded", "count", len(docs))
	return docs, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
