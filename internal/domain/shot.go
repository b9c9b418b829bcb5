package domain

import (
	"time"

	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
)

// RenderResult is the terminal outcome of one generation job.
type RenderResult struct {
	ImageURL         string                `json:"image_url"`
	StructuredPrompt shotprompt.Structured `json:"structured_prompt"`
	RequestID        string                `json:"request_id"`
}

// SceneRender pairs the shot prompt derived from scene text with the frame
// rendered from it.
type SceneRender struct {
	ShotPrompt string `json:"shot_prompt"`
	RenderResult
}

// PlannedShot is one entry of a coverage plan. IDs are positive and unique
// within a plan; entries arriving without one are assigned sequential ids
// starting at 1 in plan order.
type PlannedShot struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	ShotType    string `json:"shot_type"`
	Description string `json:"description"`
	CameraAngle string `json:"camera_angle"`
	Lens        string `json:"lens"`
	Framing     string `json:"framing"`
	Lighting    string `json:"lighting"`
	Purpose     string `json:"purpose,omitempty"`
}

// CoverageShot pairs a planned shot with its render, in plan order.
type CoverageShot struct {
	Plan PlannedShot `json:"plan"`
	RenderResult
}

// RenderSource enumerates the operations that can produce a render record.
type RenderSource string

const (
	RenderSourceText     RenderSource = "text_generate"
	RenderSourceScene    RenderSource = "scene_generate"
	RenderSourceTune     RenderSource = "shot_tune"
	RenderSourceCoverage RenderSource = "shot_coverage"
)

// RenderRecord is one persisted generation outcome. Only completed renders
// are recorded; in-flight jobs are never persisted or resumed.
type RenderRecord struct {
	ID               string                `json:"id"`
	Source           RenderSource          `json:"source"`
	Prompt           string                `json:"prompt"`
	ImageURL         string                `json:"image_url"`
	RequestID        string                `json:"request_id"`
	StructuredPrompt shotprompt.Structured `json:"structured_prompt"`
	CreatedAt        time.Time             `json:"created_at"`
}
