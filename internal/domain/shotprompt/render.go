package shotprompt

import (
	"fmt"
	"strings"
)

const fallbackPrompt = "A cinematic, well-composed shot suitable for film pre-production."

// Render turns a structured prompt into a camera-aware text prompt that
// reinforces the same data: the short description (or context), a camera
// clause, and a look clause. It is total; any tree, including nil, yields a
// non-empty sentence.
func Render(sp Structured) string {
	photo := groupView(sp[groupPhotographic])
	aesthetics := groupView(sp[groupAesthetics])

	short := textValue(sp[keyShortDescription])
	context := textValue(sp[keyContext])
	angle := textValue(photo[keyCameraAngle])
	lens := textValue(photo[keyLensFocalLength])
	mood := textValue(aesthetics[keyMoodAtmosphere])
	color := textValue(aesthetics[keyColorScheme])

	var parts []string
	switch {
	case short != "":
		parts = append(parts, short)
	case context != "":
		parts = append(parts, context)
	}

	var cameraBits []string
	if angle != "" {
		cameraBits = append(cameraBits, angle)
	}
	if lens != "" {
		cameraBits = append(cameraBits, lens)
	}
	if len(cameraBits) > 0 {
		parts = append(parts, "The shot uses "+strings.Join(cameraBits, " and ")+".")
	}

	var lookBits []string
	if mood != "" {
		lookBits = append(lookBits, mood)
	}
	if color != "" {
		lookBits = append(lookBits, "with "+color)
	}
	if len(lookBits) > 0 {
		parts = append(parts, "The overall look is "+strings.Join(lookBits, ", ")+".")
	}

	if len(parts) == 0 {
		return fallbackPrompt
	}
	return strings.Join(parts, " ")
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
