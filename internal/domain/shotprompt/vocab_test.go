package shotprompt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVocabularyEmptyPathReturnsDefaults(t *testing.T) {
	vocab, err := LoadVocabulary("")
	if err != nil {
		t.Fatalf("LoadVocabulary returned error: %v", err)
	}
	if len(vocab.CameraAngles) != 4 || len(vocab.Lenses) != 4 || len(vocab.MoodLighting) != 4 {
		t.Fatalf("defaults incomplete: %d angles, %d lenses, %d mood rules",
			len(vocab.CameraAngles), len(vocab.Lenses), len(vocab.MoodLighting))
	}
}

func TestLoadVocabularyOverlayMergesTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	overlay := `
camera_angles:
  dutch-tilt: "a canted dutch tilt that puts the frame off balance"
  low-angle: "a custom low angle"
lenses:
  14mm: "an ultra-wide 14mm lens"
mood_lighting:
  - match: ["noir"]
    conditions: "single hard key through blinds"
    shadows: "razor-edged slats across the subject"
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	vocab, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary returned error: %v", err)
	}

	if got := vocab.cameraAngle("dutch-tilt"); got != "a canted dutch tilt that puts the frame off balance" {
		t.Fatalf("new angle = %q, want the overlay value", got)
	}
	if got := vocab.cameraAngle("low-angle"); got != "a custom low angle" {
		t.Fatalf("overridden angle = %q, want the overlay value", got)
	}
	if got := vocab.cameraAngle("eye-level"); got == "eye-level" {
		t.Fatal("default angle lost after overlay merge")
	}
	if got := vocab.lens("14mm"); got != "an ultra-wide 14mm lens" {
		t.Fatalf("new lens = %q, want the overlay value", got)
	}

	// A non-empty mood_lighting list replaces the default rules.
	if len(vocab.MoodLighting) != 1 {
		t.Fatalf("mood rules = %d, want 1", len(vocab.MoodLighting))
	}
	rule, ok := vocab.lightingFor("classic noir alley")
	if !ok {
		t.Fatal("overlay mood rule did not match")
	}
	if rule.Conditions != "single hard key through blinds" {
		t.Fatalf("conditions = %q, want the overlay value", rule.Conditions)
	}
	if _, ok := vocab.lightingFor("dramatic"); ok {
		t.Fatal("default mood rules should be replaced by the overlay list")
	}
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing vocabulary file")
	}
}

func TestLightingForChecksRulesInOrder(t *testing.T) {
	vocab := DefaultVocabulary()
	rule, ok := vocab.lightingFor("a bright but tense rooftop standoff")
	if !ok {
		t.Fatal("expected a rule match")
	}
	if rule.Conditions != "low-key, dramatic lighting with strong contrast between light and shadow" {
		t.Fatalf("conditions = %q, want the first-declared (dramatic) rule", rule.Conditions)
	}
}

func TestLookupFallbacksAreVerbatim(t *testing.T) {
	vocab := DefaultVocabulary()
	if got := vocab.cameraAngle("crane shot"); got != "crane shot" {
		t.Fatalf("cameraAngle fallback = %q, want verbatim input", got)
	}
	if got := vocab.lens("200mm"); got != "200mm" {
		t.Fatalf("lens fallback = %q, want verbatim input", got)
	}
	if _, ok := vocab.lightingFor("flat corporate daylight"); ok {
		t.Fatal("unmatched mood should return no rule")
	}
}
