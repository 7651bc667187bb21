package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   *openai.ChatCompletion
	err    error
	calls  int
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.calls++
	m.params = params
	return m.resp, m.err
}

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func newTestClient(chat chatService, key string) *Client {
	return &Client{chat: chat, apiKey: key, model: "test-model"}
}

func TestKeyConfigured(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"YOUR_API_KEY", false},
		{"sk-****************abcd", false},
		{"sk-real-key", true},
	}
	for _, tt := range tests {
		if got := KeyConfigured(tt.key); got != tt.want {
			t.Errorf("KeyConfigured(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestComplete_Success(t *testing.T) {
	mock := &mockChatService{resp: completion("  Dear Sam,\nThanks.  \n")}
	client := newTestClient(mock, "sk-test")

	out, err := client.Complete(context.Background(), Prompt{System: "sys", User: "usr"}, LetterSettings)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Dear Sam,\nThanks." {
		t.Errorf("expected trimmed content, got %q", out)
	}
	if mock.params.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", mock.params.Model)
	}
	if len(mock.params.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d", len(mock.params.Messages))
	}
	if mock.params.Temperature.Value != 0.7 || mock.params.MaxTokens.Value != 1024 {
		t.Errorf("unexpected settings: temperature %v max_tokens %v", mock.params.Temperature.Value, mock.params.MaxTokens.Value)
	}
}

func TestComplete_NotConfiguredSkipsCall(t *testing.T) {
	for _, key := range []string{"", "YOUR_API_KEY", "****************"} {
		mock := &mockChatService{resp: completion("never")}
		client := newTestClient(mock, key)

		_, err := client.Complete(context.Background(), Prompt{System: "s", User: "u"}, LetterSettings)
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("key %q: expected ErrNotConfigured, got %v", key, err)
		}
		if mock.calls != 0 {
			t.Errorf("key %q: expected no call, got %d", key, mock.calls)
		}
		if FailureMessage(err) != MsgNotConfigured {
			t.Errorf("key %q: unexpected message %q", key, FailureMessage(err))
		}
	}
}

func TestComplete_ServiceError(t *testing.T) {
	client := newTestClient(&mockChatService{err: errors.New("connection reset")}, "sk-test")
	_, err := client.Complete(context.Background(), Prompt{}, LetterSettings)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected service failure error, got %v", err)
	}
	if FailureMessage(err) != MsgGeneric {
		t.Errorf("expected generic message, got %q", FailureMessage(err))
	}
}

func TestComplete_NoChoices(t *testing.T) {
	client := newTestClient(&mockChatService{resp: &openai.ChatCompletion{}}, "sk-test")
	_, err := client.Complete(context.Background(), Prompt{}, LetterSettings)
	if err != ErrNoChoicesReturned {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	client := newTestClient(&mockChatService{resp: completion(" \n ")}, "sk-test")
	_, err := client.Complete(context.Background(), Prompt{}, LetterSettings)
	if err != ErrEmptyCompletion {
		t.Errorf("expected empty completion error, got %v", err)
	}
}

func TestComplete_DebugLog(t *testing.T) {
	dir := t.TempDir()
	client := newTestClient(&mockChatService{resp: completion("Hello")}, "sk-test")
	client.debugMode = true
	client.stateDir = dir

	if _, err := client.Complete(context.Background(), Prompt{System: "S", User: "U"}, TranslationSettings); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	files, err := os.ReadDir(filepath.Join(dir, "debug"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one debug file, got %v (err %v)", len(files), err)
	}
	content, err := os.ReadFile(filepath.Join(dir, "debug", files[0].Name()))
	if err != nil {
		t.Fatalf("failed to read debug file: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("failed to unmarshal debug log: %v", err)
	}
	for _, field := range []string{"timestamp", "method", "model", "params", "response"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("required field %q missing from debug log", field)
		}
	}
}

func TestComplete_DebugDisabled(t *testing.T) {
	dir := t.TempDir()
	client := newTestClient(&mockChatService{resp: completion("Hello")}, "sk-test")
	client.stateDir = dir

	if _, err := client.Complete(context.Background(), Prompt{}, LetterSettings); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug")); !os.IsNotExist(err) {
		t.Error("debug directory should not be created when debug mode is disabled")
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(WithBaseURL("not a url")); err == nil {
		t.Error("expected error for invalid base URL")
	}
}

func TestNewClient_NoKeyIsNotAnError(t *testing.T) {
	cli, err := NewClient()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cli.KeyConfigured() {
		t.Error("expected client without key to report unconfigured")
	}
	if cli.Model() != DefaultModel {
		t.Errorf("expected default model, got %q", cli.Model())
	}
}

// completionServer fakes the chat completion endpoint.
func completionServer(t *testing.T, status int, body string, seen *atomic.Int32, check func(*http.Request, map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if check != nil {
			check(r, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_HTTPRequestShape(t *testing.T) {
	var seen atomic.Int32
	srv := completionServer(t, http.StatusOK,
		`{"id":"c1","object":"chat.completion","created":1,"model":"deepseek-chat","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Dear Priya,"}}]}`,
		&seen,
		func(r *http.Request, payload map[string]interface{}) {
			if got := r.Header.Get("Authorization"); got != "Bearer sk-live" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			if payload["model"] != "deepseek-chat" {
				t.Errorf("unexpected model %v", payload["model"])
			}
			if payload["temperature"] != 0.5 || payload["max_tokens"] != float64(2048) {
				t.Errorf("unexpected sampling params %v %v", payload["temperature"], payload["max_tokens"])
			}
			msgs, _ := payload["messages"].([]interface{})
			if len(msgs) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(msgs))
			}
			first, _ := msgs[0].(map[string]interface{})
			if first["role"] != "system" || first["content"] != "sys" {
				t.Errorf("unexpected system message %v", first)
			}
		})

	cli, err := NewClient(WithAPIKey("sk-live"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	out, err := cli.Complete(context.Background(), Prompt{System: "sys", User: "usr"}, TranslationSettings)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "Dear Priya," {
		t.Errorf("unexpected content %q", out)
	}
	if seen.Load() != 1 {
		t.Errorf("expected exactly one request, got %d", seen.Load())
	}
}

func TestComplete_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Authentication Fails","type":"authentication_error"}}`, MsgAuthFailed},
		{"server message", http.StatusPaymentRequired, `{"error":{"message":"Insufficient Balance","type":"unknown_error"}}`, "API Error: Insufficient Balance"},
		{"no message", http.StatusBadRequest, `{}`, "API Error: An unknown error occurred."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen atomic.Int32
			srv := completionServer(t, tt.status, tt.body, &seen, nil)
			cli, err := NewClient(WithAPIKey("sk-live"), WithBaseURL(srv.URL))
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}
			_, err = cli.Complete(context.Background(), Prompt{System: "s", User: "u"}, LetterSettings)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := FailureMessage(err); got != tt.want {
				t.Errorf("FailureMessage() = %q, want %q", got, tt.want)
			}
			if seen.Load() != 1 {
				t.Errorf("expected no retries, got %d requests", seen.Load())
			}
		})
	}
}

func TestFailureMessage_Nil(t *testing.T) {
	if FailureMessage(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}
