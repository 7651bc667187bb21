// Package genai talks to an OpenAI-compatible chat completion endpoint
// (DeepSeek by default) and maps its failures to user-facing messages.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/util"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for the DeepSeek chat completion API.
const (
	DefaultBaseURL = "https://api.deepseek.com/"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 60 * time.Second
)

// Values that mean the key was never filled in.
const (
	placeholderKey = "YOUR_API_KEY"
	maskedKey      = "****************"
)

// User-facing failure messages.
const (
	MsgNotConfigured = "DeepSeek API key is not configured. Please add your key to the .env file and refresh the page."
	MsgAuthFailed    = "Authentication error. Please check your DeepSeek API key in the .env file."
	MsgGeneric       = "An error occurred while generating the letter with the AI. Please try again later."
	msgUnknownAPI    = "An unknown error occurred."
)

var (
	// ErrNotConfigured means the API key is missing or still a placeholder.
	// No request is made when it is returned.
	ErrNotConfigured = errors.New("completion API key is not configured")
	// ErrNoChoicesReturned means the response carried no choices.
	ErrNoChoicesReturned = errors.New("no choices returned")
	// ErrEmptyCompletion means the first choice had no content.
	ErrEmptyCompletion = errors.New("completion content is empty")
)

// Prompt is one system/user message pair.
type Prompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Settings are the sampling parameters of a single call.
type Settings struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

var (
	// LetterSettings are used for letter generation.
	LetterSettings = Settings{Temperature: 0.7, MaxTokens: 1024}
	// TranslationSettings are used for translating a letter body.
	TranslationSettings = Settings{Temperature: 0.5, MaxTokens: 2048}
)

// chatService defines minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the completion client.
type Opts struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	DebugMode  bool
	StateDir   string
}

// Option defines a function for configuring the client.
type Option func(*Opts)

// WithAPIKey sets the bearer key sent to the completion API.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(o *Opts) {
		o.BaseURL = u
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = c
	}
}

// WithDebugMode writes each call's parameters and response under stateDir/debug.
func WithDebugMode(enabled bool, stateDir string) Option {
	return func(o *Opts) {
		o.DebugMode = enabled
		o.StateDir = stateDir
	}
}

// Client wraps the chat completion service.
type Client struct {
	chat      chatService
	apiKey    string
	model     string
	debugMode bool
	stateDir  string
	tracer    trace.Tracer
}

// NewClient creates a completion client. A missing key is not an error here;
// Complete reports ErrNotConfigured instead, without touching the network.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid completion base URL %q", cfg.BaseURL)
	}
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	cli := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	slog.Debug("genai.NewClient: client initialized", "base_url", base, "model", cfg.Model, "key_configured", KeyConfigured(cfg.APIKey))
	return &Client{
		chat:      &cli.Chat.Completions,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		debugMode: cfg.DebugMode,
		stateDir:  cfg.StateDir,
		tracer:    otel.Tracer("lettercraft/genai"),
	}, nil
}

// KeyConfigured reports whether key looks like a real API key.
func KeyConfigured(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderKey && !strings.Contains(key, maskedKey)
}

// KeyConfigured reports whether the client has a usable API key.
func (c *Client) KeyConfigured() bool {
	return KeyConfigured(c.apiKey)
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system/user message pair and returns the trimmed content
// of the first choice. Calls are never retried.
func (c *Client) Complete(ctx context.Context, p Prompt, s Settings) (string, error) {
	if !c.KeyConfigured() {
		slog.Warn("Client.Complete: API key not configured, skipping request")
		return "", ErrNotConfigured
	}

	ctx, span := c.startSpan(ctx, s)
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Temperature: openai.Float(s.Temperature),
		MaxTokens:   openai.Int(s.MaxTokens),
	}

	start := time.Now()
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			slog.Error("Client.Complete: API error", "status", apiErr.StatusCode, "message", apiErr.Message, "duration", time.Since(start))
		} else {
			slog.Error("Client.Complete: request failed", "error", err, "duration", time.Since(start))
		}
		return "", err
	}
	c.writeDebugLog("Complete", p, s, resp)

	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, ErrNoChoicesReturned.Error())
		slog.Warn("Client.Complete: no choices returned")
		return "", ErrNoChoicesReturned
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		span.SetStatus(codes.Error, ErrEmptyCompletion.Error())
		slog.Warn("Client.Complete: empty completion")
		return "", ErrEmptyCompletion
	}
	span.SetAttributes(attribute.Int("lettercraft.completion.length", len(content)))
	slog.Debug("Client.Complete: completion received", "length", len(content), "duration", time.Since(start))
	return content, nil
}

func (c *Client) startSpan(ctx context.Context, s Settings) (context.Context, trace.Span) {
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer("lettercraft/genai")
	}
	return tracer.Start(ctx, "genai.Complete", trace.WithAttributes(
		attribute.String("gen_ai.request.model", c.model),
		attribute.Float64("gen_ai.request.temperature", s.Temperature),
		attribute.Int64("gen_ai.request.max_tokens", s.MaxTokens),
	))
}

// writeDebugLog dumps one call to stateDir/debug as JSON. Failures are logged
// and otherwise ignored.
func (c *Client) writeDebugLog(method string, p Prompt, s Settings, resp *openai.ChatCompletion) {
	if !c.debugMode || c.stateDir == "" {
		return
	}
	dir := filepath.Join(c.stateDir, "debug")
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("Client.writeDebugLog: failed to create debug dir", "dir", dir, "error", err)
		return
	}
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"method":    method,
		"model":     c.model,
		"params": map[string]interface{}{
			"system":      p.System,
			"user":        p.User,
			"temperature": s.Temperature,
			"max_tokens":  s.MaxTokens,
		},
		"response": resp,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("Client.writeDebugLog: marshal failed", "error", err)
		return
	}
	name := fmt.Sprintf("completion_%s_%s.json", time.Now().UTC().Format("20060102T150405"), util.GenerateRandomID("", 6))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		slog.Warn("Client.writeDebugLog: write failed", "error", err)
	}
}

// IsNotConfigured reports whether err is a configuration failure.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// FailureMessage converts a Complete error into the message shown to the user.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConfigured) {
		return MsgNotConfigured
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return MsgAuthFailed
		}
		return "API Error: " + apiErrorMessage(apiErr)
	}
	return MsgGeneric
}

// apiErrorMessage pulls the server's error.message out of an API error.
func apiErrorMessage(apiErr *openai.Error) string {
	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}
	raw := apiErr.RawJSON()
	for _, path := range []string{"error.message", "message"} {
		if msg := strings.TrimSpace(gjson.Get(raw, path).String()); msg != "" {
			return msg
		}
	}
	return msgUnknownAPI
}
