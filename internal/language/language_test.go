package language

import (
	"errors"
	"testing"
)

func TestNeedsNativeScript(t *testing.T) {
	if len(IndianLanguages()) != 22 {
		t.Fatalf("expected 22 Indian languages, got %d", len(IndianLanguages()))
	}
	for _, name := range IndianLanguages() {
		if !NeedsNativeScript(name) {
			t.Errorf("expected %s to need native script", name)
		}
	}
	for _, name := range []string{"English", "French", "Japanese", "hindi", ""} {
		if NeedsNativeScript(name) {
			t.Errorf("did not expect %q to need native script", name)
		}
	}
}

func TestFilter(t *testing.T) {
	all, err := Filter("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	indian, err := Filter("Indian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	intl, err := Filter("international")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indian) != 22 {
		t.Errorf("expected 22 Indian languages, got %d", len(indian))
	}
	if len(indian)+len(intl) != len(all) {
		t.Errorf("groups do not partition the catalog: %d + %d != %d", len(indian), len(intl), len(all))
	}
	for _, l := range intl {
		if l.Group != GroupInternational {
			t.Errorf("unexpected group %q for %s", l.Group, l.Name)
		}
	}
}

func TestFilter_Unknown(t *testing.T) {
	if _, err := Filter("martian"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestIndianLanguagesReturnsCopy(t *testing.T) {
	l := IndianLanguages()
	l[0] = "Klingon"
	if !NeedsNativeScript("Hindi") || IndianLanguages()[0] != "Hindi" {
		t.Error("catalog was mutated through returned slice")
	}
}

func TestIsKnown(t *testing.T) {
	for _, name := range []string{"English", "Hindi", "Sanskrit", "Japanese"} {
		if !IsKnown(name) {
			t.Errorf("expected %s to be known", name)
		}
	}
	for _, name := range []string{"", "english", "Klingon"} {
		if IsKnown(name) {
			t.Errorf("did not expect %q to be known", name)
		}
	}
}
