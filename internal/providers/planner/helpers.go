package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type coveragePayload struct {
	Shots []coverageShotPayload `json:"shots"`
}

// ID is a pointer so a shot that arrives without one can be told apart from
// an explicit zero.
type coverageShotPayload struct {
	ID          *int   `json:"id"`
	Label       string `json:"label"`
	ShotType    string `json:"shot_type"`
	Description string `json:"description"`
	CameraAngle string `json:"camera_angle"`
	Lens        string `json:"lens"`
	Framing     string `json:"framing"`
	Lighting    string `json:"lighting"`
	Purpose     string `json:"purpose"`
}

func buildShotUserPrompt(sceneText string) string {
	return fmt.Sprintf("Scene description:\n%s\n\nWrite one cinematic shot description.", sceneText)
}

func buildCoverageUserPrompt(req CoverageRequest) string {
	contextLine := "\n"
	if pt := strings.TrimSpace(req.ProjectType); pt != "" {
		contextLine = fmt.Sprintf("\nProduction type: %s\n", pt)
	}
	return fmt.Sprintf(
		"Scene description:\n%s\n%s\nPlan %d distinct shots that together cover the scene well for this type of production.",
		req.SceneText, contextLine, req.NumShots,
	)
}

// parseModelPayload decodes a model completion into T, stripping code fences
// and prose around the JSON body first.
func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
