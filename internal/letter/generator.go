package letter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// Titles of synthesized error documents.
const (
	TitleConfigurationError = "Configuration Error"
	TitleGenerationError    = "Generation Error"
)

var (
	// ErrGenerationInProgress is returned when a form already has a generation in flight.
	ErrGenerationInProgress = errors.New("a letter is already being generated for this form")
	// ErrSaveFailed wraps persistence failures after a successful generation.
	ErrSaveFailed = errors.New("failed to save generated letter")
)

// Completer performs one chat completion.
type Completer interface {
	Complete(ctx context.Context, p genai.Prompt, s genai.Settings) (string, error)
}

// DocumentSaver persists generated documents.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, doc models.Document) error
}

// Generator runs the prompt, completion and mapping steps for generation requests.
type Generator struct {
	completer Completer
	saver     DocumentSaver
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithDocumentSaver persists every successful document.
func WithDocumentSaver(s DocumentSaver) GeneratorOption {
	return func(g *Generator) {
		g.saver = s
	}
}

// WithClock overrides the time source used for document timestamps.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator backed by c.
func NewGenerator(c Completer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		completer: c,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsGenerating reports whether formID has a generation in flight.
func (g *Generator) IsGenerating(formID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[formID]
	return ok
}

func (g *Generator) begin(formID string) bool {
	if formID == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[formID]; ok {
		return false
	}
	g.inFlight[formID] = struct{}{}
	return true
}

func (g *Generator) end(formID string) {
	if formID == "" {
		return
	}
	g.mu.Lock()
	delete(g.inFlight, formID)
	g.mu.Unlock()
}

// Generate produces a letter for req. On failure it still returns a Document,
// an error document whose body is the user-facing message, together with the
// underlying error. An empty formID disables the in-flight guard.
func (g *Generator) Generate(ctx context.Context, formID string, req models.GenerationRequest) (models.Document, error) {
	if !g.begin(formID) {
		slog.Warn("Generator.Generate: generation already in flight", "form_id", formID)
		return models.Document{}, ErrGenerationInProgress
	}
	defer g.end(formID)

	slog.Info("Generator.Generate: generating letter", "form_id", formID, "category", req.Category, "tone", req.Tone, "length", req.Length, "language", req.Language)

	content, err := g.completer.Complete(ctx, BuildLetterPrompt(req), genai.LetterSettings)
	if err != nil {
		doc := g.errorDocument(req, err)
		slog.Error("Generator.Generate: generation failed", "form_id", formID, "title", doc.Title, "error", err)
		return doc, err
	}

	doc, err := g.successDocument(req, content)
	if err != nil {
		return models.Document{}, err
	}
	if g.saver != nil {
		if err := g.saver.SaveDocument(ctx, doc); err != nil {
			slog.Error("Generator.Generate: failed to save document", "id", doc.ID, "error", err)
			return doc, fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
	}
	slog.Info("Generator.Generate: letter generated", "form_id", formID, "id", doc.ID, "length", len(doc.Content))
	return doc, nil
}

func (g *Generator) successDocument(req models.GenerationRequest, content string) (models.Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to generate document id: %w", err)
	}
	now := g.now().UTC()
	return models.Document{
		ID:        id.String(),
		Title:     req.Category.Title(),
		Category:  req.Category,
		Language:  req.Language,
		Tone:      req.Tone,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (g *Generator) errorDocument(req models.GenerationRequest, err error) models.Document {
	title := TitleGenerationError
	if genai.IsNotConfigured(err) {
		title = TitleConfigurationError
	}
	now := g.now().UTC()
	return models.Document{
		ID:        models.ErrorDocumentID,
		Title:     title,
		Category:  req.Category,
		Language:  req.Language,
		Tone:      req.Tone,
		Content:   genai.FailureMessage(err),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
