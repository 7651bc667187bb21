// Package language holds the fixed catalog of letter languages and the set of
// languages that must be written in their native script.
package language

import (
	"errors"
	"strings"
)

// Group partitions the catalog for filtering.
type Group string

const (
	GroupIndian        Group = "Indian"
	GroupInternational Group = "International"
)

// Language is one selectable target language.
type Language struct {
	Name  string `json:"name"`
	Group Group  `json:"group"`
	Flag  string `json:"flag"`
}

// ErrUnknownFilter is returned by Filter for an unsupported group name.
var ErrUnknownFilter = errors.New("unknown language filter")

// indian is the fixed list of languages that receive the native-script
// instruction block in letter prompts.
var indian = []string{
	"Hindi", "Bengali", "Marathi", "Telugu", "Tamil", "Gujarati", "Urdu", "Kannada",
	"Odia", "Malayalam", "Punjabi", "Assamese", "Nepali", "Maithili", "Kashmiri",
	"Sindhi", "Dogri", "Manipuri", "Santali", "Konkani", "Bodo", "Sanskrit",
}

var international = []Language{
	{Name: "English", Group: GroupInternational, Flag: "🇬🇧"},
	{Name: "Spanish", Group: GroupInternational, Flag: "🇪🇸"},
	{Name: "French", Group: GroupInternational, Flag: "🇫🇷"},
	{Name: "German", Group: GroupInternational, Flag: "🇩🇪"},
	{Name: "Portuguese", Group: GroupInternational, Flag: "🇵🇹"},
	{Name: "Italian", Group: GroupInternational, Flag: "🇮🇹"},
	{Name: "Dutch", Group: GroupInternational, Flag: "🇳🇱"},
	{Name: "Russian", Group: GroupInternational, Flag: "🇷🇺"},
	{Name: "Arabic", Group: GroupInternational, Flag: "🇸🇦"},
	{Name: "Turkish", Group: GroupInternational, Flag: "🇹🇷"},
	{Name: "Chinese", Group: GroupInternational, Flag: "🇨🇳"},
	{Name: "Japanese", Group: GroupInternational, Flag: "🇯🇵"},
	{Name: "Korean", Group: GroupInternational, Flag: "🇰🇷"},
	{Name: "Indonesian", Group: GroupInternational, Flag: "🇮🇩"},
}

var indianSet = func() map[string]bool {
	m := make(map[string]bool, len(indian))
	for _, name := range indian {
		m[name] = true
	}
	return m
}()

// NeedsNativeScript reports whether name is one of the Indian languages whose
// letters must be produced in native script. Matching is exact, as the names
// come from the catalog.
func NeedsNativeScript(name string) bool {
	return indianSet[name]
}

// IsKnown reports whether name is in the catalog.
func IsKnown(name string) bool {
	if indianSet[name] {
		return true
	}
	for _, l := range international {
		if l.Name == name {
			return true
		}
	}
	return false
}

// IndianLanguages returns a copy of the native-script language list.
func IndianLanguages() []string {
	out := make([]string, len(indian))
	copy(out, indian)
	return out
}

// All returns the whole catalog, international languages first.
func All() []Language {
	out := make([]Language, 0, len(international)+len(indian))
	out = append(out, international...)
	for _, name := range indian {
		out = append(out, Language{Name: name, Group: GroupIndian, Flag: "🇮🇳"})
	}
	return out
}

// Filter returns the catalog restricted to filter, which is one of
// "all" (or empty), "indian" or "international", case-insensitive.
func Filter(filter string) ([]Language, error) {
	var want Group
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", "all":
		return All(), nil
	case "indian":
		want = GroupIndian
	case "international":
		want = GroupInternational
	default:
		return nil, ErrUnknownFilter
	}
	var out []Language
	for _, l := range All() {
		if l.Group == want {
			out = append(out, l)
		}
	}
	return out, nil
}
