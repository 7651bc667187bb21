// Package store provides document storage backends for LetterCraft.
//
// It includes an in-memory store and persistent SQLite and PostgreSQL stores,
// selected by DSN.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// DefaultListLimit caps ListDocuments when the caller passes no limit.
const DefaultListLimit = 50

var (
	// ErrDocumentNotFound is returned by UpdateDocumentContent for an unknown id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrErrorDocument is returned when asked to persist a synthesized error document.
	ErrErrorDocument = errors.New("error documents are not stored")
	// ErrMissingID is returned when a document has no id.
	ErrMissingID = errors.New("document id is required")
)

// Store persists letter documents.
type Store interface {
	// SaveDocument inserts doc or replaces the stored document with the same id.
	SaveDocument(ctx context.Context, doc models.Document) error
	// GetDocument returns nil, nil when the id is unknown.
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	// UpdateDocumentContent replaces the body of a stored document and bumps updated_at.
	UpdateDocumentContent(ctx context.Context, id, content string) (*models.Document, error)
	// ListDocuments returns the most recently created documents first.
	ListDocuments(ctx context.Context, limit int) ([]models.Document, error)
	Close() error
}

// Opts holds configuration options for stores.
type Opts struct {
	DSN string
}

// Option configures a store.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType returns "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else, which is treated as a file path.
func DetectDSNType(dsn string) string {
	d := strings.TrimSpace(dsn)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(d, "host=") || strings.Contains(d, "dbname=") || strings.Contains(d, "user=") {
		return "postgres"
	}
	return "sqlite"
}

// New opens the store selected by dsn. An empty dsn gives an in-memory store.
func New(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		slog.Debug("store.New: no DSN, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(dsn) == "postgres" {
		return NewPostgresStore(WithPostgresDSN(dsn))
	}
	return NewSQLiteStore(WithSQLiteDSN(dsn))
}

func checkSavable(doc models.Document) error {
	if doc.ID == "" {
		return ErrMissingID
	}
	if doc.IsError() {
		return ErrErrorDocument
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// InMemoryStore keeps documents in a map. Safe for concurrent use.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]models.Document
	now  func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		docs: make(map[string]models.Document),
		now:  time.Now,
	}
}

func (s *InMemoryStore) SaveDocument(ctx context.Context, doc models.Document) error {
	if err := checkSavable(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	slog.Debug("InMemoryStore.SaveDocument: saved", "id", doc.ID)
	return nil
}

func (s *InMemoryStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (s *InMemoryStore) UpdateDocumentContent(ctx context.Context, id, content string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	doc.Content = content
	doc.UpdatedAt = s.now().UTC()
	s.docs[id] = doc
	return &doc, nil
}

func (s *InMemoryStore) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	s.mu.RLock()
	docs := make([]models.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	if limit = normalizeLimit(limit); len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
