package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/export"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/letter"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/share"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/store"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "lettercraft"}))
}

func (s *Server) createLetterHandler(w http.ResponseWriter, r *http.Request) {
	var form models.GenerationForm
	if !decodeJSON(w, r, &form) {
		return
	}
	req, err := letter.Compose(form)
	if err != nil {
		slog.Warn("Server.createLetterHandler: validation failed", "error", err)
		msg := err.Error()
		if errors.Is(err, models.ErrEmptyKeywords) {
			msg = models.MsgEmptyKeywords
		}
		writeJSONResponse(w, http.StatusBadRequest, models.Error(msg))
		return
	}

	// A client that disconnects does not abort the call; the letter is still stored.
	doc, err := s.generator.Generate(context.WithoutCancel(r.Context()), form.FormID, req)
	switch {
	case err == nil:
		writeJSONResponse(w, http.StatusCreated, models.Success(doc))
	case errors.Is(err, letter.ErrGenerationInProgress):
		writeJSONResponse(w, http.StatusConflict, models.Error("A letter is already being generated for this form"))
	case errors.Is(err, letter.ErrSaveFailed):
		writeJSONResponse(w, http.StatusInternalServerError, models.ErrorWithResult("Letter generated but could not be saved", doc))
	case genai.IsNotConfigured(err):
		writeJSONResponse(w, http.StatusServiceUnavailable, models.ErrorWithResult(doc.Content, doc))
	case doc.IsError():
		writeJSONResponse(w, http.StatusBadGateway, models.ErrorWithResult(doc.Content, doc))
	default:
		slog.Error("Server.createLetterHandler: generation failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate letter"))
	}
}

func (s *Server) listLettersHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	docs, err := s.st.ListDocuments(r.Context(), limit)
	if err != nil {
		slog.Error("Server.listLettersHandler: list failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list letters"))
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(docs))
}

// loadDocument fetches the document named in the path, writing 404 or 500 on failure.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (models.Document, bool) {
	id := r.PathValue("id")
	doc, err := s.st.GetDocument(r.Context(), id)
	if err != nil {
		slog.Error("Server.loadDocument: lookup failed", "id", id, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load letter"))
		return models.Document{}, false
	}
	if doc == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Letter not found"))
		return models.Document{}, false
	}
	return *doc, true
}

func (s *Server) getLetterHandler(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(doc))
}

type updateLetterRequest struct {
	Content string `json:"content"`
}

func (s *Server) updateLetterHandler(w http.ResponseWriter, r *http.Request) {
	var body updateLetterRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := models.ValidateContent(body.Content); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	id := r.PathValue("id")
	doc, err := s.st.UpdateDocumentContent(r.Context(), id, body.Content)
	if errors.Is(err, store.ErrDocumentNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Letter not found"))
		return
	}
	if err != nil {
		slog.Error("Server.updateLetterHandler: update failed", "id", id, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update letter"))
		return
	}
	slog.Info("Server.updateLetterHandler: letter edited", "id", id, "length", len(body.Content))
	writeJSONResponse(w, http.StatusOK, models.Success(doc))
}

func (s *Server) exportLetterHandler(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	s.exportDocument(w, r, doc)
}

// exportDocument renders doc in the format named by the "format" query
// parameter, plain text by default.
func (s *Server) exportDocument(w http.ResponseWriter, r *http.Request, doc models.Document) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatText)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	artifact, err := s.exporter.Export(doc, format)
	if errors.Is(err, export.ErrErrorDocument) {
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}
	if err != nil {
		slog.Error("Server.exportDocument: export failed", "id", doc.ID, "format", format, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to export letter"))
		return
	}
	slog.Info("Server.exportDocument: letter exported", "id", doc.ID, "format", format, "bytes", len(artifact.Data))
	writeArtifact(w, artifact)
}

func (s *Server) previewLetterHandler(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	html, err := export.Preview(doc)
	if err != nil {
		slog.Error("Server.previewLetterHandler: render failed", "id", doc.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to render preview"))
		return
	}
	w.Header().Set("Content-Type", export.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

type shareRequest struct {
	To      string `json:"to"`
	Channel string `json:"channel,omitempty"`
}

type shareResult struct {
	Channel  share.Channel `json:"channel"`
	To       string        `json:"to"`
	Messages int           `json:"messages"`
}

func (s *Server) shareLetterHandler(w http.ResponseWriter, r *http.Request) {
	if s.sharer == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Sharing is not configured"))
		return
	}
	var body shareRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	ch, err := share.ParseChannel(body.Channel)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := share.ValidateRecipient(body.To); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	n, err := s.sharer.Share(r.Context(), doc, ch, body.To)
	switch {
	case err == nil:
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Letter shared", shareResult{Channel: ch, To: body.To, Messages: n}))
	case errors.Is(err, share.ErrEmptyBody):
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
	case errors.Is(err, share.ErrErrorDocument):
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
	default:
		writeJSONResponse(w, http.StatusBadGateway, models.ErrorWithResult("Failed to share letter", shareResult{Channel: ch, To: body.To, Messages: n}))
	}
}

func (s *Server) formStatusHandler(w http.ResponseWriter, r *http.Request) {
	formID := r.PathValue("formID")
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"form_id":    formID,
		"generating": s.generator.IsGenerating(formID),
	}))
}
