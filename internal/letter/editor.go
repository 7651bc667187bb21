package letter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/language"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/templates"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/util"
)

// MsgTranslationFailed replaces the generic failure message for translations.
const MsgTranslationFailed = "An error occurred during translation."

// DefaultSessionTTL is how long an idle editor session is kept.
const DefaultSessionTTL = 2 * time.Hour

var (
	ErrSessionNotFound       = errors.New("editor session not found")
	ErrUnknownPlaceholder    = errors.New("unknown placeholder")
	ErrUnknownLanguage       = errors.New("unknown language")
	ErrTranslationInProgress = errors.New("a translation is already in progress for this session")
	ErrTranslationStale      = errors.New("inputs changed while translating")
)

// EditorSession is one user's pass over a template: the placeholder values
// entered so far, the target language and a cached translation of the body.
type EditorSession struct {
	ID       string
	Template models.Template

	mu             sync.Mutex
	values         map[string]string
	targetLanguage string
	translation    *string
	translating    bool
	revision       uint64
	createdAt      time.Time
	updatedAt      time.Time
}

// SessionView is a point-in-time copy of a session for rendering.
type SessionView struct {
	ID             string            `json:"id"`
	TemplateID     string            `json:"template_id"`
	TemplateName   string            `json:"template_name"`
	Values         map[string]string `json:"values"`
	TargetLanguage string            `json:"target_language"`
	Body           string            `json:"body"`
	TranslatedBody *string           `json:"translated_body,omitempty"`
	FinalBody      string            `json:"final_body"`
	Unresolved     []string          `json:"unresolved"`
	Translating    bool              `json:"translating"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func newEditorSession(id string, tpl models.Template, now time.Time) *EditorSession {
	return &EditorSession{
		ID:             id,
		Template:       tpl,
		values:         make(map[string]string, len(tpl.Placeholders)),
		targetLanguage: models.DefaultLanguage,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (s *EditorSession) declared(key string) bool {
	for _, p := range s.Template.Placeholders {
		if p.Key == key {
			return true
		}
	}
	return false
}

// invalidate drops the cached translation. Callers hold s.mu.
func (s *EditorSession) invalidate() {
	s.translation = nil
	s.revision++
	s.updatedAt = time.Now().UTC()
}

// SetValue records the value of one declared placeholder and drops any
// cached translation.
func (s *EditorSession) SetValue(key, value string) error {
	if !s.declared(key) {
		return fmt.Errorf("%w: %q", ErrUnknownPlaceholder, key)
	}
	if len(value) > models.MaxFieldLength {
		return models.ErrFieldTooLong
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.invalidate()
	return nil
}

// SetTargetLanguage changes the translation target and drops any cached
// translation. An empty name resets it to English.
func (s *EditorSession) SetTargetLanguage(name string) error {
	if name == "" {
		name = models.DefaultLanguage
	}
	if !language.IsKnown(name) {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.targetLanguage == name {
		return nil
	}
	s.targetLanguage = name
	s.invalidate()
	return nil
}

// TargetLanguage returns the current translation target.
func (s *EditorSession) TargetLanguage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetLanguage
}

// Body returns the template with the current values substituted.
func (s *EditorSession) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return templates.Substitute(s.Template, s.values)
}

// Translation returns the cached translation, if any.
func (s *EditorSession) Translation() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.translation == nil {
		return "", false
	}
	return *s.translation, true
}

// FinalBody is the text used for export, copy and share: the cached
// translation when present, otherwise the substituted body.
func (s *EditorSession) FinalBody() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.translation != nil {
		return *s.translation
	}
	return templates.Substitute(s.Template, s.values)
}

// IsTranslating reports whether a translation call is in flight.
func (s *EditorSession) IsTranslating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.translating
}

// Translate sends the substituted body to c for translation into the target
// language and caches the result. If the inputs change while the call is in
// flight the result is discarded with ErrTranslationStale. On failure the
// cache stays empty and the returned message is suitable for display.
func (s *EditorSession) Translate(ctx context.Context, c Completer) (string, error) {
	s.mu.Lock()
	if s.translating {
		s.mu.Unlock()
		return "", ErrTranslationInProgress
	}
	s.translating = true
	body := templates.Substitute(s.Template, s.values)
	lang := s.targetLanguage
	rev := s.revision
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.translating = false
		s.mu.Unlock()
	}()

	slog.Info("EditorSession.Translate: translating", "session_id", s.ID, "template_id", s.Template.ID, "language", lang)
	out, err := c.Complete(ctx, BuildTranslationPrompt(body, lang), genai.TranslationSettings)
	if err != nil {
		slog.Error("EditorSession.Translate: translation failed", "session_id", s.ID, "error", err)
		return TranslationFailureMessage(err), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != rev {
		slog.Warn("EditorSession.Translate: inputs changed during translation, discarding", "session_id", s.ID)
		return "", ErrTranslationStale
	}
	s.translation = &out
	s.updatedAt = time.Now().UTC()
	return out, nil
}

// TranslationFailureMessage maps a translation error to a display message.
func TranslationFailureMessage(err error) string {
	msg := genai.FailureMessage(err)
	if msg == genai.MsgGeneric {
		return MsgTranslationFailed
	}
	return msg
}

// View returns a consistent snapshot of the session.
func (s *EditorSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	body := templates.Substitute(s.Template, s.values)
	final := body
	var translated *string
	if s.translation != nil {
		t := *s.translation
		translated = &t
		final = t
	}
	unresolved := templates.Unresolved(s.Template, body)
	if unresolved == nil {
		unresolved = []string{}
	}
	return SessionView{
		ID:             s.ID,
		TemplateID:     s.Template.ID,
		TemplateName:   s.Template.Name,
		Values:         values,
		TargetLanguage: s.targetLanguage,
		Body:           body,
		TranslatedBody: translated,
		FinalBody:      final,
		Unresolved:     unresolved,
		Translating:    s.translating,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
}

// Document renders the session's final body as a Document.
func (s *EditorSession) Document() models.Document {
	v := s.View()
	return models.Document{
		ID:        s.Template.ID,
		Title:     s.Template.Name,
		Category:  s.Template.Category,
		Language:  v.TargetLanguage,
		Tone:      tone.Formal,
		Content:   v.FinalBody,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (s *EditorSession) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SessionManager holds editor sessions in memory.
type SessionManager struct {
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[string]*EditorSession
}

// NewSessionManager creates a manager that evicts sessions idle for longer
// than ttl. A non-positive ttl uses DefaultSessionTTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*EditorSession),
	}
}

// Open starts a session for the template with the given id, optionally
// pre-filled with values.
func (m *SessionManager) Open(templateID string, values map[string]string) (*EditorSession, error) {
	tpl, err := templates.ByID(templateID)
	if err != nil {
		return nil, err
	}
	s := newEditorSession(util.GenerateSessionID(), tpl, m.now().UTC())
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.SetValue(k, values[k]); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	slog.Debug("SessionManager.Open: session opened", "session_id", s.ID, "template_id", templateID)
	return s, nil
}

// Get returns a session by id.
func (m *SessionManager) Get(id string) (*EditorSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) pruneLocked() {
	cutoff := m.now().UTC().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastUsed().Before(cutoff) && !s.IsTranslating() {
			delete(m.sessions, id)
			slog.Debug("SessionManager.prune: session expired", "session_id", id)
		}
	}
}
