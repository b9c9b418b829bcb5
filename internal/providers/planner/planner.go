package planner

import (
	"context"

	"github.com/Purvav0511/cinefibo/internal/domain"
)

// CoverageRequest describes the scene an editor wants covered and how many
// distinct setups the plan should contain.
type CoverageRequest struct {
	SceneText   string
	NumShots    int
	ProjectType string
}

// Planner turns plain scene descriptions into camera-ready shot language.
type Planner interface {
	// ShotPrompt writes one detailed cinematic shot description for the scene.
	ShotPrompt(ctx context.Context, sceneText string) (string, error)
	// Coverage plans a list of distinct shots that together cover the scene.
	Coverage(ctx context.Context, req CoverageRequest) ([]domain.PlannedShot, error)
}
