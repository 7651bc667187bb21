package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		Keywords: "thank you for interview",
		Category: CategoryThankYou,
		Tone:     tone.Professional,
		Length:   LengthShort,
		Language: "English",
	}
}

func TestCategoryTitle(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryThankYou, "Thank you Letter"},
		{CategoryBusiness, "Business Letter"},
		{CategoryCoverLetter, "Cover letter Letter"},
		{Category(""), "Letter"},
	}
	for _, tt := range tests {
		if got := tt.category.Title(); got != tt.want {
			t.Errorf("Category(%q).Title() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationRequest)
		want   error
	}{
		{"valid", func(r *GenerationRequest) {}, nil},
		{"empty keywords", func(r *GenerationRequest) { r.Keywords = "" }, ErrEmptyKeywords},
		{"whitespace keywords", func(r *GenerationRequest) { r.Keywords = " \t\n" }, ErrEmptyKeywords},
		{"long keywords", func(r *GenerationRequest) { r.Keywords = strings.Repeat("a", MaxKeywordsLength+1) }, ErrKeywordsTooLong},
		{"bad category", func(r *GenerationRequest) { r.Category = "memo" }, ErrInvalidCategory},
		{"bad tone", func(r *GenerationRequest) { r.Tone = "angry" }, ErrInvalidTone},
		{"bad length", func(r *GenerationRequest) { r.Length = "epic" }, ErrInvalidLength},
		{"long instructions", func(r *GenerationRequest) { r.CustomInstructions = strings.Repeat("x", MaxFieldLength+1) }, ErrFieldTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			if err := r.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDocumentIsError(t *testing.T) {
	if !(Document{ID: ErrorDocumentID}).IsError() {
		t.Error("expected error document to report IsError")
	}
	if (Document{ID: "0190b5a0-0000-7000-8000-000000000000"}).IsError() {
		t.Error("regular document reported IsError")
	}
}

func TestDocumentJSONUsesContentKey(t *testing.T) {
	data, err := json.Marshal(Document{ID: "x", Content: "Dear Sam,"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"content":"Dear Sam,"`) {
		t.Errorf("expected content key in %s", data)
	}
}

func TestErrorWithResult(t *testing.T) {
	doc := Document{ID: ErrorDocumentID}
	resp := ErrorWithResult("boom", doc)
	if resp.Status != string(APIStatusError) || resp.Message != "boom" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Result.(Document).ID != ErrorDocumentID {
		t.Errorf("expected document result, got %+v", resp.Result)
	}
}

func TestPlaceholderToken(t *testing.T) {
	p := Placeholder{Key: "Your Name"}
	if p.Token() != "[Your Name]" {
		t.Errorf("unexpected token %q", p.Token())
	}
}
