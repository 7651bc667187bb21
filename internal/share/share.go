// Package share delivers finished letters over SMS or WhatsApp through Twilio.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// MaxMessageLength is Twilio's per-message body limit in characters.
const MaxMessageLength = 1600

// Channel is a delivery channel.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

var (
	ErrInvalidRecipient = errors.New("recipient must be an E.164 phone number")
	ErrUnknownChannel   = errors.New("unknown share channel")
	ErrErrorDocument    = errors.New("error documents cannot be shared")
	ErrEmptyBody        = errors.New("nothing to share")
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// ValidateRecipient checks that to is an E.164 number such as +919812345678.
func ValidateRecipient(to string) error {
	if !e164.MatchString(to) {
		return ErrInvalidRecipient
	}
	return nil
}

// ParseChannel accepts "sms" or "whatsapp"; empty means WhatsApp.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChannelWhatsApp:
		return ChannelWhatsApp, nil
	case ChannelSMS:
		return ChannelSMS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

// Sender delivers one message body.
type Sender interface {
	SendMessage(ctx context.Context, ch Channel, to string, body string) error
}

// Sharer formats documents for messaging and hands them to a Sender.
type Sharer struct {
	sender Sender
}

// NewSharer creates a Sharer that delivers through s.
func NewSharer(s Sender) *Sharer {
	return &Sharer{sender: s}
}

// Share sends the document's title and body to a recipient, split into as
// many messages as needed. It returns the number of messages sent.
func (s *Sharer) Share(ctx context.Context, doc models.Document, ch Channel, to string) (int, error) {
	if doc.IsError() {
		return 0, ErrErrorDocument
	}
	if err := ValidateRecipient(to); err != nil {
		return 0, err
	}
	if ch != ChannelSMS && ch != ChannelWhatsApp {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
	body := strings.TrimSpace(doc.Content)
	if body == "" {
		return 0, ErrEmptyBody
	}
	text := body
	if doc.Title != "" {
		text = doc.Title + "\n\n" + body
	}

	parts := SplitMessage(text, MaxMessageLength)
	for i, part := range parts {
		if err := s.sender.SendMessage(ctx, ch, to, part); err != nil {
			slog.Error("Sharer.Share: send failed", "channel", ch, "part", i+1, "parts", len(parts), "error", err)
			return i, fmt.Errorf("failed to send part %d of %d: %w", i+1, len(parts), err)
		}
	}
	slog.Info("Sharer.Share: document shared", "id", doc.ID, "channel", ch, "parts", len(parts))
	return len(parts), nil
}

// SplitMessage cuts text into parts of at most limit characters. When more
// than one part is needed each is prefixed with "(i/n) " and cuts prefer a
// line break, then a space. Limits too small to hold the prefix get plain
// parts; a non-positive limit is treated as 1.
func SplitMessage(text string, limit int) []string {
	limit = max(limit, 1)
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	// Reserve room for a "(99/99) " prefix.
	const prefixRoom = 8
	if limit <= prefixRoom {
		return splitRunes(text, limit)
	}
	chunks := splitRunes(text, limit-prefixRoom)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = fmt.Sprintf("(%d/%d) %s", i+1, len(chunks), c)
	}
	return out
}

func splitRunes(text string, size int) []string {
	var out []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= size {
			if part := strings.TrimSpace(string(runes)); part != "" {
				out = append(out, part)
			}
			break
		}
		cut := lastBreak(runes[:size], '\n')
		if cut <= size/2 {
			if sp := lastBreak(runes[:size], ' '); sp > size/2 {
				cut = sp
			} else {
				cut = size
			}
		}
		if part := strings.TrimSpace(string(runes[:cut])); part != "" {
			out = append(out, part)
		}
		runes = runes[cut:]
	}
	return out
}

func lastBreak(r []rune, sep rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == sep {
			return i + 1
		}
	}
	return -1
}
