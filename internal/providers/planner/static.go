package planner

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Purvav0511/cinefibo/internal/domain"
)

// StaticPlanner produces deterministic shot language without a model behind
// it. It keeps the service usable when no OpenAI key is configured.
type StaticPlanner struct{}

func NewStaticPlanner() *StaticPlanner {
	return &StaticPlanner{}
}

type coverageTemplate struct {
	shotType    string
	cameraAngle string
	lens        string
	framing     string
	lighting    string
	purpose     string
}

var coverageTemplates = []coverageTemplate{
	{
		shotType:    "wide establishing",
		cameraAngle: "eye-level",
		lens:        "24mm wide",
		framing:     "full view of the space and every key subject",
		lighting:    "soft ambient key with practicals visible in frame",
		purpose:     "orients the viewer in the room layout",
	},
	{
		shotType:    "medium",
		cameraAngle: "eye-level",
		lens:        "35mm",
		framing:     "main subject from the waist up with breathing room",
		lighting:    "key light motivated by the nearest practical",
		purpose:     "carries the main action",
	},
	{
		shotType:    "close-up",
		cameraAngle: "eye-level",
		lens:        "85mm telephoto",
		framing:     "face and shoulders of the main subject",
		lighting:    "soft key with a gentle backlight for separation",
		purpose:     "lands emotional beats and reactions",
	},
	{
		shotType:    "over-the-shoulder",
		cameraAngle: "slightly high",
		lens:        "50mm",
		framing:     "foreground shoulder framing the opposite subject",
		lighting:    "matched to the medium coverage",
		purpose:     "connects the subjects during exchanges",
	},
	{
		shotType:    "insert detail",
		cameraAngle: "top-down",
		lens:        "50mm close focus",
		framing:     "hands or a key object filling the frame",
		lighting:    "tight pool of light on the detail",
		purpose:     "gives the edit useful cutaways",
	},
	{
		shotType:    "low-angle wide",
		cameraAngle: "low-angle",
		lens:        "24mm wide",
		framing:     "subjects set against the ceiling or sky line",
		lighting:    "backlit rim with deeper shadows",
		purpose:     "adds scale and drama to the space",
	},
}

func (s *StaticPlanner) ShotPrompt(ctx context.Context, sceneText string) (string, error) {
	scene := strings.TrimSpace(sceneText)
	if scene == "" {
		scene = "the scene"
	}
	return fmt.Sprintf(
		"A wide establishing shot of %s, photographed eye-level on a 35mm lens with a static camera, soft natural key light and gentle shadows, composed to show the full space and the main subject clearly.",
		scene,
	), nil
}

func (s *StaticPlanner) Coverage(ctx context.Context, req CoverageRequest) ([]domain.PlannedShot, error) {
	scene := strings.TrimSpace(req.SceneText)
	if scene == "" {
		scene = "the scene"
	}
	n := req.NumShots
	if n < 1 {
		n = 1
	}
	if n > len(coverageTemplates) {
		n = len(coverageTemplates)
	}
	titler := cases.Title(language.Und)
	shots := make([]domain.PlannedShot, 0, n)
	for idx, tpl := range coverageTemplates[:n] {
		shots = append(shots, domain.PlannedShot{
			ID:          idx + 1,
			Label:       titler.String(tpl.shotType),
			ShotType:    tpl.shotType,
			Description: fmt.Sprintf("A %s shot of %s, %s.", tpl.shotType, scene, tpl.framing),
			CameraAngle: tpl.cameraAngle,
			Lens:        tpl.lens,
			Framing:     tpl.framing,
			Lighting:    tpl.lighting,
			Purpose:     tpl.purpose,
		})
	}
	return shots, nil
}

var _ Planner = (*StaticPlanner)(nil)
