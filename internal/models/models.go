// Package models defines the core data structures for LetterCraft.
//
// It includes generation requests, letter documents, templates and the API
// response envelope shared across modules.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

// Category classifies a letter.
type Category string

const (
	CategoryFormal         Category = "formal"
	CategoryInformal       Category = "informal"
	CategoryBusiness       Category = "business"
	CategoryCoverLetter    Category = "cover-letter"
	CategoryResignation    Category = "resignation"
	CategoryInvitation     Category = "invitation"
	CategoryComplaint      Category = "complaint"
	CategoryThankYou       Category = "thank-you"
	CategoryRecommendation Category = "recommendation"
	CategoryApplication    Category = "application"
	CategoryGovernment     Category = "government"
	CategoryEducation      Category = "education"
)

// Categories lists every supported category.
var Categories = []Category{
	CategoryFormal, CategoryInformal, CategoryBusiness, CategoryCoverLetter,
	CategoryResignation, CategoryInvitation, CategoryComplaint, CategoryThankYou,
	CategoryRecommendation, CategoryApplication, CategoryGovernment, CategoryEducation,
}

// Length is the desired size of a generated letter.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Form defaults applied when a field is left blank.
const (
	DefaultCategory = CategoryBusiness
	DefaultLength   = LengthMedium
	DefaultLanguage = "English"
)

// Validation constants for input validation
const (
	// MaxKeywordsLength defines the maximum allowed length for the keywords field
	MaxKeywordsLength = 2000
	// MaxFieldLength defines the maximum allowed length for names, addresses and instructions
	MaxFieldLength = 1000
	// MaxContentLength defines the maximum allowed length for an edited letter body
	MaxContentLength = 20000
)

// MsgEmptyKeywords is shown when a form is submitted without keywords.
const MsgEmptyKeywords = "Please provide at least some keywords or context for your letter."

// ErrorDocumentID is the fixed id carried by synthesized error documents.
const ErrorDocumentID = "error"

// Error variables for better error handling and testability
var (
	ErrEmptyKeywords   = errors.New("please provide at least some keywords or context for your letter")
	ErrKeywordsTooLong = errors.New("keywords exceed maximum length")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidCategory = errors.New("invalid letter category")
	ErrInvalidLength   = errors.New("invalid letter length")
	ErrInvalidTone     = errors.New("invalid letter tone")
	ErrEmptyContent    = errors.New("letter content cannot be empty")
	ErrContentTooLong  = errors.New("letter content exceeds maximum length")
)

// IsValidCategory checks if the given category is supported.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsValidLength checks if the given length is supported.
func IsValidLength(l Length) bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	default:
		return false
	}
}

// Title renders the category as a document title: the first letter is
// upper-cased, the first hyphen becomes a space and " Letter" is appended.
// "thank-you" becomes "Thank you Letter".
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return "Letter"
	}
	return strings.ToUpper(s[:1]) + strings.Replace(s[1:], "-", " ", 1) + " Letter"
}

// GenerationForm carries raw form values as submitted by a client.
type GenerationForm struct {
	FormID             string `json:"form_id,omitempty"`
	Keywords           string `json:"keywords"`
	Category           string `json:"category,omitempty"`
	Tone               string `json:"tone,omitempty"`
	Length             string `json:"length,omitempty"`
	Language           string `json:"language,omitempty"`
	SenderName         string `json:"sender_name,omitempty"`
	SenderAddress      string `json:"sender_address,omitempty"`
	RecipientName      string `json:"recipient_name,omitempty"`
	RecipientAddress   string `json:"recipient_address,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// GenerationRequest is a validated request for one letter generation.
// It is passed by value and never mutated after composition.
type GenerationRequest struct {
	Keywords           string    `json:"keywords"`
	Category           Category  `json:"category"`
	Tone               tone.Tone `json:"tone"`
	Length             Length    `json:"length"`
	Language           string    `json:"language"`
	SenderName         string    `json:"sender_name,omitempty"`
	SenderAddress      string    `json:"sender_address,omitempty"`
	RecipientName      string    `json:"recipient_name,omitempty"`
	RecipientAddress   string    `json:"recipient_address,omitempty"`
	CustomInstructions string    `json:"custom_instructions,omitempty"`
}

// Validate performs validation on an already composed request.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Keywords) == "" {
		return ErrEmptyKeywords
	}
	if len(r.Keywords) > MaxKeywordsLength {
		return ErrKeywordsTooLong
	}
	if !IsValidCategory(r.Category) {
		return ErrInvalidCategory
	}
	if !tone.IsValid(r.Tone) {
		return ErrInvalidTone
	}
	if !IsValidLength(r.Length) {
		return ErrInvalidLength
	}
	for _, f := range []string{r.Language, r.SenderName, r.SenderAddress, r.RecipientName, r.RecipientAddress, r.CustomInstructions} {
		if len(f) > MaxFieldLength {
			return ErrFieldTooLong
		}
	}
	return nil
}

// Document is a letter shown in the preview/editor, either generated or
// filled from a template.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Language  string    `json:"language"`
	Tone      tone.Tone `json:"tone"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsError reports whether d is a synthesized error document.
func (d Document) IsError() bool {
	return d.ID == ErrorDocumentID
}

// ValidateContent checks an edited letter body.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Placeholder is a named blank in a Template.
type Placeholder struct {
	Key      string `json:"key" yaml:"key"`
	LabelKey string `json:"label_key" yaml:"label_key"`
}

// Token returns the bracketed form of the placeholder as it appears in a template body.
func (p Placeholder) Token() string {
	return "[" + p.Key + "]"
}

// Template is a static letter skeleton with bracketed placeholder tokens.
type Template struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description" yaml:"description"`
	Category     Category      `json:"category" yaml:"category"`
	Body         string        `json:"body" yaml:"body"`
	Placeholders []Placeholder `json:"placeholders" yaml:"placeholders"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// API Response types for consistent JSON responses

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Convenience functions for common response patterns

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// ErrorWithResult creates an error API response that still carries a result,
// used when a failure is itself represented as a document.
func ErrorWithResult(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		WithResult(result).
		Build()
}
