// Package tone provides the fixed whitelist of letter tones, normalization of
// user-supplied tone values, and the tone guide line injected into letter prompts.
package tone

import (
	"errors"
	"strings"
)

// Tone is the register a letter is written in.
type Tone string

// ---- Whitelist ----

const (
	Professional Tone = "professional"
	Friendly     Tone = "friendly"
	Persuasive   Tone = "persuasive"
	Formal       Tone = "formal"
	Casual       Tone = "casual"
)

// Default is used when the caller leaves the tone blank.
const Default = Professional

// All lists the supported tones in presentation order.
var All = []Tone{Professional, Friendly, Persuasive, Formal, Casual}

// ErrUnknownTone is returned by Parse for values outside the whitelist.
var ErrUnknownTone = errors.New("unknown tone")

// guides maps each tone to the instruction line placed in the user prompt.
var guides = map[Tone]string{
	Professional: "Keep a courteous, businesslike register with clear and direct sentences.",
	Friendly:     "Use warm, approachable language while staying respectful.",
	Persuasive:   "Argue the request convincingly with concrete reasons and a clear call to action.",
	Formal:       "Use formal diction, complete sentences and no contractions.",
	Casual:       "Write in a relaxed, conversational voice as between acquaintances.",
}

// ---- Public API ----

// IsValid reports whether t is on the whitelist.
func IsValid(t Tone) bool {
	_, ok := guides[t]
	return ok
}

// Parse normalizes raw (trimmed, lower-cased) and validates it.
// An empty value yields Default.
func Parse(raw string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return Default, nil
	}
	if !IsValid(t) {
		return "", ErrUnknownTone
	}
	return t, nil
}

// BuildToneGuide returns the one-line instruction for t, or an empty string
// when t is not on the whitelist.
func BuildToneGuide(t Tone) string {
	return guides[t]
}
