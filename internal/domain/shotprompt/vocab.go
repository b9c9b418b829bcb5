package shotprompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MoodLighting is one lighting rule: when any Match keyword appears in an
// override's mood text, Conditions and Shadows become set-if-absent defaults
// for the lighting group.
type MoodLighting struct {
	Match      []string `yaml:"match"`
	Conditions string   `yaml:"conditions"`
	Shadows    string   `yaml:"shadows"`
}

// Vocabulary maps the short camera and lens values exposed to users onto the
// descriptive phrases the generator responds to, plus the ordered mood
// lighting rules. Rule order is part of the contract: moods are matched top
// to bottom and the first hit wins.
type Vocabulary struct {
	CameraAngles map[string]string `yaml:"camera_angles"`
	Lenses       map[string]string `yaml:"lenses"`
	MoodLighting []MoodLighting    `yaml:"mood_lighting"`
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		CameraAngles: map[string]string{
			"eye-level":  "an eye-level camera angle, placing the viewer at the character's eye line",
			"low-angle":  "a low-angle shot looking up at the subject, making them feel powerful and dominant",
			"high-angle": "a high-angle shot looking down on the subject, making them feel small or vulnerable",
			"top-down":   "a top-down, overhead camera angle",
		},
		Lenses: map[string]string{
			"24mm wide-angle": "a 24mm wide-angle lens that emphasizes space and environment",
			"35mm":            "a 35mm lens that balances subject and environment",
			"50mm":            "a 50mm lens for a natural, cinematic perspective",
			"85mm close-up":   "an 85mm telephoto lens for intimate, compressed close-ups",
		},
		MoodLighting: []MoodLighting{
			{
				Match:      []string{"dramatic", "tense"},
				Conditions: "low-key, dramatic lighting with strong contrast between light and shadow",
				Shadows:    "deep, pronounced shadows that add tension and mystery",
			},
			{
				Match:      []string{"bright", "energetic"},
				Conditions: "bright, high-key lighting that fills the space with energy",
				Shadows:    "very soft, minimal shadows to keep the mood light",
			},
			{
				Match:      []string{"melancholic", "quiet"},
				Conditions: "soft, dim lighting with cool or muted tones",
				Shadows:    "gentle but noticeable shadows that add introspection",
			},
			{
				Match:      []string{"serene", "cozy"},
				Conditions: "warm, soft lighting that feels intimate and inviting",
				Shadows:    "soft, diffuse shadows that wrap gently around forms",
			},
		},
	}
}

// LoadVocabulary reads a YAML overlay and merges it over the defaults. An
// empty path returns the defaults. Camera and lens tables merge per key; a
// non-empty mood_lighting list replaces the default rules entirely so the
// file controls matching priority.
func LoadVocabulary(path string) (*Vocabulary, error) {
	vocab := DefaultVocabulary()
	if strings.TrimSpace(path) == "" {
		return vocab, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shotprompt: read vocabulary: %w", err)
	}
	var overlay Vocabulary
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("shotprompt: parse vocabulary: %w", err)
	}
	for key, desc := range overlay.CameraAngles {
		vocab.CameraAngles[key] = desc
	}
	for key, desc := range overlay.Lenses {
		vocab.Lenses[key] = desc
	}
	if len(overlay.MoodLighting) > 0 {
		vocab.MoodLighting = overlay.MoodLighting
	}
	return vocab, nil
}

// cameraAngle resolves a camera override to its descriptive phrase. Unknown
// values pass through verbatim.
func (v *Vocabulary) cameraAngle(raw string) string {
	if desc, ok := v.CameraAngles[raw]; ok {
		return desc
	}
	return raw
}

// lens resolves a lens override to its descriptive phrase. Unknown values
// pass through verbatim.
func (v *Vocabulary) lens(raw string) string {
	if desc, ok := v.Lenses[raw]; ok {
		return desc
	}
	return raw
}

// lightingFor returns the first rule with a keyword contained in mood. The
// substring check is case-sensitive.
func (v *Vocabulary) lightingFor(mood string) (MoodLighting, bool) {
	for _, rule := range v.MoodLighting {
		for _, kw := range rule.Match {
			if kw != "" && strings.Contains(mood, kw) {
				return rule, true
			}
		}
	}
	return MoodLighting{}, false
}
