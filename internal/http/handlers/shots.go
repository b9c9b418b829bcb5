package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
	"github.com/Purvav0511/cinefibo/internal/providers/planner"
	"github.com/Purvav0511/cinefibo/internal/studio"
)

const defaultCoverageShots = 6

// fiboGenerateRequest accepts the structured prompt either as a JSON object
// or as a JSON string holding an encoded tree; a string passes to the
// generator verbatim.
type fiboGenerateRequest struct {
	Prompt           string          `json:"prompt"`
	StructuredPrompt json.RawMessage `json:"structured_prompt"`
}

type shotGenerateRequest struct {
	SceneText string `json:"scene_text"`
}

type shotTuneRequest struct {
	StructuredPrompt json.RawMessage `json:"structured_prompt"`
	CameraAngle      string          `json:"camera_angle"`
	LensFocalLength  string          `json:"lens_focal_length"`
	Mood             string          `json:"mood"`
	ColorScheme      string          `json:"color_scheme"`
}

// NumShots is a pointer so an omitted field can take the default while an
// explicit zero is still rejected as out of range.
type shotCoverageRequest struct {
	SceneText   string `json:"scene_text"`
	NumShots    *int   `json:"num_shots"`
	ProjectType string `json:"project_type"`
}

// FiboGenerate renders one frame straight from the caller's prompt and/or
// structured prompt, without any planning.
func (a *App) FiboGenerate(w http.ResponseWriter, r *http.Request) {
	var req fiboGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := studio.TextRequest{Prompt: req.Prompt}
	if trimmed := bytes.TrimSpace(req.StructuredPrompt); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] == '"' {
			var raw string
			if err := json.Unmarshal(trimmed, &raw); err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "structured_prompt must be an object or a JSON string")
				return
			}
			text.StructuredRaw = raw
		} else {
			sp, err := shotprompt.Decode(trimmed)
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "structured_prompt must be an object or a JSON string")
				return
			}
			text.Structured = sp
		}
	}
	result, err := a.Studio.GenerateFromText(r.Context(), text)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

// ShotGenerate plans one cinematic shot for the scene and renders it.
func (a *App) ShotGenerate(w http.ResponseWriter, r *http.Request) {
	var req shotGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	render, err := a.Studio.GenerateFromScene(r.Context(), req.SceneText)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, render)
}

// ShotTune applies cinematography overrides to an existing structured prompt
// and regenerates the frame.
func (a *App) ShotTune(w http.ResponseWriter, r *http.Request) {
	var req shotTuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sp, err := shotprompt.Decode(req.StructuredPrompt)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "structured_prompt must be an object")
		return
	}
	result, err := a.Studio.TuneAndRegenerate(r.Context(), sp, shotprompt.Overrides{
		CameraAngle:     req.CameraAngle,
		LensFocalLength: req.LensFocalLength,
		Mood:            req.Mood,
		ColorScheme:     req.ColorScheme,
	})
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

// ShotCoverage plans a full coverage set for the scene and renders every
// planned shot. The response holds the shots in plan order.
func (a *App) ShotCoverage(w http.ResponseWriter, r *http.Request) {
	var req shotCoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	numShots := defaultCoverageShots
	if req.NumShots != nil {
		numShots = *req.NumShots
	}
	shots, err := a.Studio.GenerateCoverage(r.Context(), planner.CoverageRequest{
		SceneText:   req.SceneText,
		NumShots:    numShots,
		ProjectType: req.ProjectType,
	})
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"shots": shots})
}
