package shotprompt

// Overrides carries the partial user controls applied onto a structured
// prompt. Zero-valued fields leave the corresponding tree fields untouched.
type Overrides struct {
	CameraAngle     string
	LensFocalLength string
	Mood            string
	ColorScheme     string
}

// IsZero reports whether no override field is set.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// Apply merges the overrides onto base and returns a new tree; base is never
// mutated. Camera angle and lens are resolved through the vocabulary and
// replace their fields. The mood text is written verbatim, then matched
// against the lighting rules; a hit supplies lighting conditions and shadows
// for any of those fields the tree does not already carry, so camera, mood,
// and lighting move together. Color scheme replaces verbatim. Groups are
// created only when an override writes into them.
func (v *Vocabulary) Apply(base Structured, o Overrides) Structured {
	sp := base.Clone()

	if o.CameraAngle != "" {
		sp.group(groupPhotographic)[keyCameraAngle] = v.cameraAngle(o.CameraAngle)
	}
	if o.LensFocalLength != "" {
		sp.group(groupPhotographic)[keyLensFocalLength] = v.lens(o.LensFocalLength)
	}
	if o.Mood != "" {
		sp.group(groupAesthetics)[keyMoodAtmosphere] = o.Mood
		if rule, ok := v.lightingFor(o.Mood); ok {
			lighting := sp.group(groupLighting)
			setIfAbsent(lighting, keyConditions, rule.Conditions)
			setIfAbsent(lighting, keyShadows, rule.Shadows)
		}
	}
	if o.ColorScheme != "" {
		sp.group(groupAesthetics)[keyColorScheme] = o.ColorScheme
	}
	return sp
}

// setIfAbsent only checks key presence: an existing empty value is kept.
func setIfAbsent(group map[string]any, key, value string) {
	if _, ok := group[key]; ok {
		return
	}
	group[key] = value
}
