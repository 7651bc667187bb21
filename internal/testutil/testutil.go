// Package testutil provides shared helpers for LetterCraft tests: a fake
// chat completion endpoint, sample documents and JSON assertions.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

// CompletionServer fakes an OpenAI-compatible /chat/completions endpoint.
type CompletionServer struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	reply    string
	requests []map[string]interface{}
}

// NewCompletionServer starts a server that answers every completion with
// reply. It is closed when the test ends.
func NewCompletionServer(t testing.TB, reply string) *CompletionServer {
	t.Helper()
	cs := &CompletionServer{status: http.StatusOK, reply: reply}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.handle))
	t.Cleanup(cs.Close)
	return cs
}

// Reply makes subsequent calls succeed with content.
func (cs *CompletionServer) Reply(content string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = http.StatusOK
	cs.reply = content
}

// FailWith makes subsequent calls answer with status and an OpenAI-style
// error envelope carrying message.
func (cs *CompletionServer) FailWith(status int, message string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = status
	cs.reply = message
}

// Hits returns how many completion requests were received.
func (cs *CompletionServer) Hits() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.requests)
}

// LastRequest returns the decoded body of the most recent request, or nil.
func (cs *CompletionServer) LastRequest() map[string]interface{} {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.requests) == 0 {
		return nil
	}
	return cs.requests[len(cs.requests)-1]
}

func (cs *CompletionServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var body map[string]interface{}
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &body)

	cs.mu.Lock()
	cs.requests = append(cs.requests, body)
	status, reply := cs.status, cs.reply
	cs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": reply, "type": "invalid_request_error"},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "deepseek-chat",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": reply},
		}},
	})
}

// SampleDocument returns a stored-looking thank-you letter.
func SampleDocument(id string) models.Document {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return models.Document{
		ID:        id,
		Title:     models.CategoryThankYou.Title(),
		Category:  models.CategoryThankYou,
		Language:  models.DefaultLanguage,
		Tone:      tone.Formal,
		Content:   "Dear Priya,\n\nThank you for the interview.\n\nSincerely,\nAsha",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t testing.TB, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes an APIResponse envelope and validates its status field.
func AssertJSONResponse(t testing.TB, rr *httptest.ResponseRecorder, expectedStatus models.APIStatus) models.APIResponse {
	t.Helper()
	var response models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if response.Status != string(expectedStatus) {
		t.Errorf("expected status '%s', got '%s' (message %q)", expectedStatus, response.Status, response.Message)
	}
	return response
}

// DecodeResult re-decodes an envelope's result into target.
func DecodeResult(t testing.TB, resp models.APIResponse, target interface{}) {
	t.Helper()
	MustUnmarshalJSON(t, MustMarshalJSON(t, resp.Result), target)
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t testing.TB, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody io.Reader = http.NoBody
	if body != nil {
		reqBody = bytes.NewReader(MustMarshalJSON(t, body))
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t testing.TB, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t testing.TB, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", fmt.Errorf("%w (data %s)", err, data))
	}
}
