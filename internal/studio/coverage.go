package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/providers/fibo"
	"github.com/Purvav0511/cinefibo/internal/providers/planner"
)

// coverageShotLimit caps how many frames one coverage request may render.
const coverageShotLimit = 12

// coverageQualityClause closes every coverage render prompt.
const coverageQualityClause = "Cinematic, high production value, realistic lighting, sharp focus."

// GenerateCoverage plans a full set of shots for the scene and renders every
// planned shot in plan order, one at a time. The operation is all or
// nothing: if any shot fails to render, the whole call fails and no partial
// plan is returned.
func (s *Service) GenerateCoverage(ctx context.Context, req planner.CoverageRequest) ([]domain.CoverageShot, error) {
	if strings.TrimSpace(req.SceneText) == "" {
		return nil, fmt.Errorf("studio: scene_text is required: %w", domain.ErrInvalidInput)
	}
	if req.NumShots < 1 || req.NumShots > coverageShotLimit {
		return nil, fmt.Errorf("studio: num_shots must be between 1 and %d: %w", coverageShotLimit, domain.ErrInvalidInput)
	}
	plan, err := s.planner.Coverage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("studio: plan coverage: %w", err)
	}
	s.logger.Info().Int("shots", len(plan)).Str("project_type", req.ProjectType).Msg("studio: coverage planned")

	rendered := make([]domain.CoverageShot, 0, len(plan))
	for _, shot := range plan {
		prompt := buildShotRenderPrompt(shot, req.ProjectType)
		result, err := s.generator.Generate(ctx, fibo.GenerateRequest{Prompt: prompt})
		if err != nil {
			return nil, fmt.Errorf("studio: coverage shot %d: %w", shot.ID, err)
		}
		s.record(ctx, domain.RenderRecord{
			Source:           domain.RenderSourceCoverage,
			Prompt:           prompt,
			ImageURL:         result.ImageURL,
			RequestID:        result.RequestID,
			StructuredPrompt: result.StructuredPrompt,
		})
		rendered = append(rendered, domain.CoverageShot{Plan: shot, RenderResult: *result})
	}
	return rendered, nil
}

// buildShotRenderPrompt flattens a planned shot into one render prompt. Field
// order is fixed so downstream prompts stay stable across runs.
func buildShotRenderPrompt(shot domain.PlannedShot, projectType string) string {
	var parts []string
	if shot.Description != "" {
		parts = append(parts, shot.Description)
	}
	if shot.ShotType != "" {
		parts = append(parts, fmt.Sprintf("Shot type: %s.", shot.ShotType))
	}
	if shot.Framing != "" {
		parts = append(parts, fmt.Sprintf("Framing: %s.", shot.Framing))
	}
	if shot.CameraAngle != "" {
		parts = append(parts, fmt.Sprintf("Camera angle: %s.", shot.CameraAngle))
	}
	if shot.Lens != "" {
		parts = append(parts, fmt.Sprintf("Lens: %s.", shot.Lens))
	}
	if shot.Lighting != "" {
		parts = append(parts, fmt.Sprintf("Lighting: %s.", shot.Lighting))
	}
	if projectType != "" {
		parts = append(parts, fmt.Sprintf("This frame is for a %s.", projectType))
	}
	parts = append(parts, coverageQualityClause)
	return strings.Join(parts, " ")
}
