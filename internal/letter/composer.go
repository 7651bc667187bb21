// Package letter implements the LetterCraft pipeline: composing a request from
// form input, building prompts, generating documents through a completer and
// the manual template editor.
package letter

import (
	"strings"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

// Compose validates raw form input and fills defaults. Blank category, tone,
// length and language become business, professional, medium and English.
func Compose(raw models.GenerationForm) (models.GenerationRequest, error) {
	req := models.GenerationRequest{
		Keywords:           strings.TrimSpace(raw.Keywords),
		Category:           models.Category(normalize(raw.Category)),
		Length:             models.Length(normalize(raw.Length)),
		Language:           strings.TrimSpace(raw.Language),
		SenderName:         strings.TrimSpace(raw.SenderName),
		SenderAddress:      strings.TrimSpace(raw.SenderAddress),
		RecipientName:      strings.TrimSpace(raw.RecipientName),
		RecipientAddress:   strings.TrimSpace(raw.RecipientAddress),
		CustomInstructions: strings.TrimSpace(raw.CustomInstructions),
	}
	if req.Keywords == "" {
		return models.GenerationRequest{}, models.ErrEmptyKeywords
	}

	t, err := tone.Parse(raw.Tone)
	if err != nil {
		return models.GenerationRequest{}, models.ErrInvalidTone
	}
	req.Tone = t
	if req.Category == "" {
		req.Category = models.DefaultCategory
	}
	if req.Length == "" {
		req.Length = models.DefaultLength
	}
	if req.Language == "" {
		req.Language = models.DefaultLanguage
	}

	if err := req.Validate(); err != nil {
		return models.GenerationRequest{}, err
	}
	return req, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
