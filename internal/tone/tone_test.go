package tone

import (
	"errors"
	"testing"
)

func TestParse_DefaultsWhenEmpty(t *testing.T) {
	got, err := Parse("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Professional {
		t.Errorf("expected default %q, got %q", Professional, got)
	}
}

func TestParse_NormalizesCase(t *testing.T) {
	got, err := Parse("  Friendly ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Friendly {
		t.Errorf("expected %q, got %q", Friendly, got)
	}
}

func TestParse_RejectsUnknown(t *testing.T) {
	_, err := Parse("sarcastic")
	if !errors.Is(err, ErrUnknownTone) {
		t.Errorf("expected ErrUnknownTone, got %v", err)
	}
}

func TestAllTonesHaveGuides(t *testing.T) {
	if len(All) != 5 {
		t.Fatalf("expected 5 tones, got %d", len(All))
	}
	for _, tn := range All {
		if !IsValid(tn) {
			t.Errorf("tone %q not valid", tn)
		}
		if BuildToneGuide(tn) == "" {
			t.Errorf("tone %q has no guide", tn)
		}
	}
}

func TestBuildToneGuide_UnknownIsEmpty(t *testing.T) {
	if g := BuildToneGuide(Tone("angry")); g != "" {
		t.Errorf("expected empty guide, got %q", g)
	}
}
