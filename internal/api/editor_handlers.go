package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/language"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/letter"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/templates"
)

func (s *Server) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	var list []models.Template
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := models.Category(raw)
		if !models.IsValidCategory(c) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidCategory.Error()))
			return
		}
		list = templates.ByCategory(c)
	} else {
		all, err := templates.Load()
		if err != nil {
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Template catalog unavailable"))
			return
		}
		list = all
	}
	if list == nil {
		list = []models.Template{}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

func (s *Server) getTemplateHandler(w http.ResponseWriter, r *http.Request) {
	tpl, err := templates.ByID(r.PathValue("id"))
	if errors.Is(err, templates.ErrTemplateNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Template not found"))
		return
	}
	if err != nil {
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Template catalog unavailable"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(tpl))
}

func (s *Server) listLanguagesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := language.Filter(r.URL.Query().Get("group"))
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

type openSessionRequest struct {
	TemplateID     string            `json:"template_id"`
	Values         map[string]string `json:"values,omitempty"`
	TargetLanguage string            `json:"target_language,omitempty"`
}

func (s *Server) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	var body openSessionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	sess, err := s.sessions.Open(body.TemplateID, body.Values)
	if errors.Is(err, templates.ErrTemplateNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Template not found"))
		return
	}
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if body.TargetLanguage != "" {
		if err := sess.SetTargetLanguage(body.TargetLanguage); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
	}
	slog.Info("Server.openSessionHandler: editor session opened", "session_id", sess.ID, "template_id", body.TemplateID)
	writeJSONResponse(w, http.StatusCreated, models.Success(sess.View()))
}

// loadSession fetches the editor session named in the path, writing 404 when absent.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*letter.EditorSession, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Editor session not found"))
		return nil, false
	}
	return sess, true
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.View()))
}

type updateSessionRequest struct {
	Values         map[string]string `json:"values,omitempty"`
	TargetLanguage *string           `json:"target_language,omitempty"`
}

func (s *Server) updateSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	var body updateSessionRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	keys := make([]string, 0, len(body.Values))
	for k := range body.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := sess.SetValue(k, body.Values[k]); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
	}
	if body.TargetLanguage != nil {
		if err := sess.SetTargetLanguage(*body.TargetLanguage); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.View()))
}

func (s *Server) translateSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	msg, err := sess.Translate(context.WithoutCancel(r.Context()), s.completer)
	switch {
	case err == nil:
		writeJSONResponse(w, http.StatusOK, models.Success(sess.View()))
	case errors.Is(err, letter.ErrTranslationInProgress):
		writeJSONResponse(w, http.StatusConflict, models.Error("A translation is already in progress"))
	case errors.Is(err, letter.ErrTranslationStale):
		writeJSONResponse(w, http.StatusConflict, models.ErrorWithResult("The letter changed while translating. Please translate again.", sess.View()))
	case genai.IsNotConfigured(err):
		writeJSONResponse(w, http.StatusServiceUnavailable, models.ErrorWithResult(msg, sess.View()))
	default:
		writeJSONResponse(w, http.StatusBadGateway, models.ErrorWithResult(msg, sess.View()))
	}
}

func (s *Server) exportSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.exportDocument(w, r, sess.Document())
}
