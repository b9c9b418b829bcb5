package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/infra"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	openAIDefaultTimeout = 30 * time.Second
)

const shotSystemPrompt = `You are a senior cinematographer and shot designer.

Given a scene description, you write ONE highly detailed, camera-aware,
cinematic shot description. The description should mention:

- shot type (wide, medium, close-up, etc.)
- subject and composition
- camera angle and movement (if any)
- lens or focal length feeling (wide / normal / telephoto)
- lighting and mood
- any relevant production design that matters for framing

Return ONLY a single paragraph of natural language description, no bullet points.`

const coverageSystemPrompt = `You are a cinematographer planning coverage for a small-to-mid scale production.

The production type may vary: narrative film, YouTube show, interview, commercial,
live stream, short-form content, etc. You must adapt shot choices to the described
scene and the production context.

You MUST respond with pure JSON of the form:

{
  "shots": [
    {
      "id": 1,
      "label": "Wide establishing",
      "shot_type": "wide establishing",
      "description": "Full view of the environment and key subjects...",
      "camera_angle": "eye-level, slightly angled toward the host side",
      "lens": "24mm wide",
      "framing": "What is inside the frame (how many people, key objects, composition)",
      "lighting": "Key lighting notes for this shot",
      "purpose": "What this shot is used for in the edit"
    },
    ...
  ]
}

Guidelines:
- Think in terms of efficient coverage: establish the space, key subjects, reaction shots,
  useful cutaways, and any important details.
- Include at least one shot that helps the viewer understand the ROOM / SPACE LAYOUT.
- Lighting notes should be practical (soft key, motivated by practical lamps, backlight, etc.).
- ` + "`label`" + ` should be short but descriptive (good for UI).
- Limit yourself to the requested number of shots.`

// OpenAIOptions configures the model-backed planner.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// OpenAIPlanner plans shots with an OpenAI chat model. It has no fallback:
// planning failures surface to the caller as errors.
type OpenAIPlanner struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *infra.Logger
}

// NewOpenAIPlanner constructs the planner. The API key is mandatory; model
// and base URL fall back to service defaults.
func NewOpenAIPlanner(opts OpenAIOptions) (*OpenAIPlanner, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("planner: openai api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &OpenAIPlanner{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}, nil
}

// ShotPrompt asks the model for one single-paragraph shot description.
func (p *OpenAIPlanner) ShotPrompt(ctx context.Context, sceneText string) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: shotSystemPrompt},
			{Role: "user", Content: buildShotUserPrompt(sceneText)},
		},
	}
	text, err := p.complete(ctx, payload)
	if err != nil {
		return "", err
	}
	p.logger.Debug().Str("model", p.model).Int("chars", len(text)).Msg("planner: shot prompt generated")
	return text, nil
}

// Coverage asks the model for a JSON shot list and normalizes it. Shots that
// arrive without an id get one assigned from their position, counting from 1.
func (p *OpenAIPlanner) Coverage(ctx context.Context, req CoverageRequest) ([]domain.PlannedShot, error) {
	payload := chatRequest{
		Model:          p.model,
		Temperature:    0.7,
		ResponseFormat: &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: coverageSystemPrompt},
			{Role: "user", Content: buildCoverageUserPrompt(req)},
		},
	}
	text, err := p.complete(ctx, payload)
	if err != nil {
		return nil, err
	}
	parsed, err := parseModelPayload[coveragePayload](text)
	if err != nil {
		return nil, fmt.Errorf("planner: parse coverage payload: %w", err)
	}
	shots := make([]domain.PlannedShot, 0, len(parsed.Shots))
	for idx, shot := range parsed.Shots {
		id := idx + 1
		if shot.ID != nil {
			id = *shot.ID
		}
		shots = append(shots, domain.PlannedShot{
			ID:          id,
			Label:       shot.Label,
			ShotType:    shot.ShotType,
			Description: shot.Description,
			CameraAngle: shot.CameraAngle,
			Lens:        shot.Lens,
			Framing:     shot.Framing,
			Lighting:    shot.Lighting,
			Purpose:     shot.Purpose,
		})
	}
	p.logger.Debug().Str("model", p.model).Int("shots", len(shots)).Msg("planner: coverage planned")
	return shots, nil
}

func (p *OpenAIPlanner) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("planner: encode request: %w", err)
	}
	endpoint := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("planner: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("planner: contact openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("planner: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("planner: openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("planner: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("planner: no choices in response")
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("planner: empty completion")
	}
	return text, nil
}

var _ Planner = (*OpenAIPlanner)(nil)
