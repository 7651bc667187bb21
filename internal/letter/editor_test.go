package letter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/templates"
)

func openSession(t *testing.T) *EditorSession {
	t.Helper()
	s, err := NewSessionManager(0).Open("ty-01", map[string]string{"Job Title": "Data Analyst"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestSessionManager_OpenAndGet(t *testing.T) {
	m := NewSessionManager(0)
	s, err := m.Open("ty-01", nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !strings.HasPrefix(s.ID, "s_") {
		t.Errorf("unexpected session id %q", s.ID)
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Errorf("Get returned %v, %v", got, err)
	}
	if _, err := m.Get("s_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.Open("nope", nil); !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := m.Open("ty-01", map[string]string{"Bogus": "x"}); !errors.Is(err, ErrUnknownPlaceholder) {
		t.Errorf("expected ErrUnknownPlaceholder, got %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session, got %d", m.Len())
	}
}

func TestEditorSession_BodyAndUnresolved(t *testing.T) {
	s := openSession(t)
	if !strings.Contains(s.Body(), "about the Data Analyst position") {
		t.Errorf("value not substituted: %q", s.Body())
	}
	if !strings.Contains(s.Body(), "[Your Name]") {
		t.Error("unfilled placeholder should stay visible")
	}
	v := s.View()
	if len(v.Unresolved) != len(s.Template.Placeholders)-1 {
		t.Errorf("unexpected unresolved list %v", v.Unresolved)
	}
	if v.FinalBody != v.Body || v.TranslatedBody != nil {
		t.Error("final body should equal body before translation")
	}
}

func TestEditorSession_SetValueRejectsUnknown(t *testing.T) {
	s := openSession(t)
	if err := s.SetValue("Not a key", "x"); !errors.Is(err, ErrUnknownPlaceholder) {
		t.Errorf("expected ErrUnknownPlaceholder, got %v", err)
	}
}

func TestEditorSession_TranslateCachesAndInvalidates(t *testing.T) {
	s := openSession(t)
	if err := s.SetTargetLanguage("Hindi"); err != nil {
		t.Fatalf("SetTargetLanguage failed: %v", err)
	}
	fc := &fakeCompleter{reply: "प्रिय महोदय,"}

	out, err := s.Translate(context.Background(), fc)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "प्रिय महोदय," || s.FinalBody() != out {
		t.Errorf("translation not used as final body: %q", s.FinalBody())
	}
	if fc.settings[0] != genai.TranslationSettings {
		t.Errorf("expected translation settings, got %+v", fc.settings[0])
	}
	if !strings.Contains(fc.prompts[0].User, "into Hindi.") || !strings.Contains(fc.prompts[0].User, "Data Analyst") {
		t.Errorf("unexpected translation prompt %q", fc.prompts[0].User)
	}
	if s.Document().Content != out || s.Document().Language != "Hindi" {
		t.Errorf("document should carry translation: %+v", s.Document())
	}

	// A placeholder edit drops the cache.
	if err := s.SetValue("Your Name", "Asha"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if _, ok := s.Translation(); ok {
		t.Error("placeholder edit should invalidate translation")
	}
	if !strings.Contains(s.FinalBody(), "Asha") {
		t.Error("final body should fall back to substituted body")
	}

	// So does a target language change.
	if _, err := s.Translate(context.Background(), fc); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if err := s.SetTargetLanguage("Tamil"); err != nil {
		t.Fatalf("SetTargetLanguage failed: %v", err)
	}
	if _, ok := s.Translation(); ok {
		t.Error("language change should invalidate translation")
	}
}

func TestEditorSession_SetTargetLanguage(t *testing.T) {
	s := openSession(t)
	if err := s.SetTargetLanguage("Klingon"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
	if err := s.SetTargetLanguage(""); err != nil || s.TargetLanguage() != "English" {
		t.Errorf("empty language should reset to English, got %q (%v)", s.TargetLanguage(), err)
	}
}

func TestEditorSession_TranslateNotConfigured(t *testing.T) {
	client, err := genai.NewClient(genai.WithAPIKey(""))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	s := openSession(t)
	msg, err := s.Translate(context.Background(), client)
	if !errors.Is(err, genai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if msg != genai.MsgNotConfigured {
		t.Errorf("unexpected message %q", msg)
	}
	if _, ok := s.Translation(); ok {
		t.Error("failed translation must not be cached")
	}
}

func TestEditorSession_TranslateGenericFailure(t *testing.T) {
	s := openSession(t)
	msg, err := s.Translate(context.Background(), &fakeCompleter{err: errBoom})
	if !errors.Is(err, errBoom) || msg != MsgTranslationFailed {
		t.Errorf("unexpected result %q, %v", msg, err)
	}
	if s.IsTranslating() {
		t.Error("translating flag not cleared")
	}
}

func TestEditorSession_OneTranslationAtATime(t *testing.T) {
	s := openSession(t)
	fc := &fakeCompleter{reply: "Bonjour", block: make(chan struct{}), started: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(context.Background(), fc)
		done <- err
	}()
	<-fc.started

	if !s.IsTranslating() {
		t.Error("expected session to report translating")
	}
	if _, err := s.Translate(context.Background(), &fakeCompleter{reply: "x"}); !errors.Is(err, ErrTranslationInProgress) {
		t.Errorf("expected ErrTranslationInProgress, got %v", err)
	}
	close(fc.block)
	if err := <-done; err != nil {
		t.Fatalf("translation failed: %v", err)
	}
}

func TestEditorSession_StaleTranslationDiscarded(t *testing.T) {
	s := openSession(t)
	fc := &fakeCompleter{reply: "Hola", block: make(chan struct{}), started: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(context.Background(), fc)
		done <- err
	}()
	<-fc.started
	if err := s.SetValue("Your Name", "Asha"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	close(fc.block)

	if err := <-done; !errors.Is(err, ErrTranslationStale) {
		t.Errorf("expected ErrTranslationStale, got %v", err)
	}
	if _, ok := s.Translation(); ok {
		t.Error("stale translation must not be cached")
	}
}
