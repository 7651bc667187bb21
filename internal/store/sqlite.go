package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore stores documents in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully", "path", dsn)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc models.Document) error {
	if err := checkSavable(doc); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, string(doc.Category), doc.Language, string(doc.Tone), doc.Content,
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		slog.Error("SQLiteStore SaveDocument failed", "error", err, "id", doc.ID)
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	slog.Debug("SQLiteStore SaveDocument succeeded", "id", doc.ID)
	return nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("SQLiteStore GetDocument not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetDocument failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *SQLiteStore) UpdateDocumentContent(ctx context.Context, id, content string) (*models.Document, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), id)
	if err != nil {
		slog.Error("SQLiteStore UpdateDocumentContent failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrDocumentNotFound
	}
	slog.Debug("SQLiteStore UpdateDocumentContent succeeded", "id", id, "length", len(content))
	return s.GetDocument(ctx, id)
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		slog.Error("SQLiteStore ListDocuments query failed", "error", err)
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		slog.Error("SQLiteStore ListDocuments scan failed", "error", err)
		return nil, err
	}
	slog.Debug("SQLiteStore ListDocuments succeeded", "count", len(docs))
	return docs, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
