package letter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestGenerate_ThankYouScenario(t *testing.T) {
	fc := &fakeCompleter{reply: "\n  Dear Ms. Iyer,\n\nThank you for the interview.\n\nBest regards,\nAsha  \n"}
	saver := &fakeSaver{}
	g := NewGenerator(fc, WithDocumentSaver(saver), WithClock(func() time.Time { return fixedNow }))

	req, err := Compose(models.GenerationForm{
		Keywords: "thank you for interview",
		Category: "thank-you",
		Tone:     "professional",
		Length:   "short",
		Language: "English",
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	doc, err := g.Generate(context.Background(), "form-1", req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.Title != "Thank you Letter" {
		t.Errorf("unexpected title %q", doc.Title)
	}
	if doc.Content != "Dear Ms. Iyer,\n\nThank you for the interview.\n\nBest regards,\nAsha" {
		t.Errorf("content not trimmed response: %q", doc.Content)
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil || id.Version() != 7 {
		t.Errorf("expected UUIDv7 id, got %q", doc.ID)
	}
	if !doc.CreatedAt.Equal(fixedNow) || !doc.UpdatedAt.Equal(fixedNow) {
		t.Errorf("unexpected timestamps %v %v", doc.CreatedAt, doc.UpdatedAt)
	}
	if fc.settings[0] != genai.LetterSettings {
		t.Errorf("expected letter settings, got %+v", fc.settings[0])
	}
	if len(saver.docs) != 1 || saver.docs[0].ID != doc.ID {
		t.Errorf("expected document to be saved, got %+v", saver.docs)
	}
}

func TestGenerate_ConfigurationErrorWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := genai.NewClient(genai.WithAPIKey("YOUR_API_KEY"), genai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	saver := &fakeSaver{}
	g := NewGenerator(client, WithDocumentSaver(saver))

	doc, err := g.Generate(context.Background(), "", sampleRequest("English"))
	if !errors.Is(err, genai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if doc.ID != "error" || doc.Title != TitleConfigurationError {
		t.Errorf("unexpected error document %+v", doc)
	}
	if doc.Content != genai.MsgNotConfigured {
		t.Errorf("unexpected body %q", doc.Content)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network call, got %d", hits.Load())
	}
	if len(saver.docs) != 0 {
		t.Error("error documents must not be saved")
	}
}

func TestGenerate_AuthenticationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Authentication Fails","type":"authentication_error"}}`))
	}))
	defer srv.Close()

	client, err := genai.NewClient(genai.WithAPIKey("sk-wrong"), genai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	doc, err := NewGenerator(client).Generate(context.Background(), "", sampleRequest("English"))
	if err == nil {
		t.Fatal("expected error")
	}
	if doc.Title != TitleGenerationError || doc.Content != genai.MsgAuthFailed {
		t.Errorf("unexpected error document %+v", doc)
	}
}

func TestGenerate_GenericFailure(t *testing.T) {
	g := NewGenerator(&fakeCompleter{err: errBoom})
	doc, err := g.Generate(context.Background(), "f", sampleRequest("English"))
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if !doc.IsError() || doc.Title != TitleGenerationError || doc.Content != genai.MsgGeneric {
		t.Errorf("unexpected error document %+v", doc)
	}
	if doc.Category != models.CategoryThankYou || doc.Language != "English" {
		t.Errorf("error document should carry request metadata: %+v", doc)
	}
	if g.IsGenerating("f") {
		t.Error("in-flight flag not cleared after failure")
	}
}

func TestGenerate_SaveFailure(t *testing.T) {
	g := NewGenerator(&fakeCompleter{reply: "Dear Sam,"}, WithDocumentSaver(&fakeSaver{err: errBoom}))
	doc, err := g.Generate(context.Background(), "", sampleRequest("English"))
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if doc.Content != "Dear Sam," {
		t.Errorf("document should still be returned, got %+v", doc)
	}
}

func TestGenerate_OneInFlightPerForm(t *testing.T) {
	fc := &fakeCompleter{reply: "Dear Sam,", block: make(chan struct{}), started: make(chan struct{})}
	g := NewGenerator(fc)

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), "form-7", sampleRequest("English"))
		done <- err
	}()
	<-fc.started

	if !g.IsGenerating("form-7") {
		t.Error("expected form-7 to report generating")
	}
	if _, err := g.Generate(context.Background(), "form-7", sampleRequest("English")); !errors.Is(err, ErrGenerationInProgress) {
		t.Errorf("expected ErrGenerationInProgress, got %v", err)
	}
	if g.IsGenerating("form-8") {
		t.Error("unrelated form reported generating")
	}

	close(fc.block)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	if g.IsGenerating("form-7") {
		t.Error("in-flight flag not cleared")
	}
	if fc.Calls() != 1 {
		t.Errorf("expected one completion call, got %d", fc.Calls())
	}
}
