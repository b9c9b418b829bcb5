package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
	"github.com/Purvav0511/cinefibo/internal/infra"
	"github.com/Purvav0511/cinefibo/internal/providers/fibo"
	"github.com/Purvav0511/cinefibo/internal/providers/planner"
)

// Generator renders one frame from a prompt or structured prompt. The FIBO
// client satisfies it; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, req fibo.GenerateRequest) (*domain.RenderResult, error)
}

// HistoryRecorder persists completed renders. Recording is best effort and
// never fails a generation.
type HistoryRecorder interface {
	Record(ctx context.Context, rec domain.RenderRecord) error
}

// Options wires the service's collaborators. Planner and Generator are
// required; History may be nil when no database is configured.
type Options struct {
	Planner    planner.Planner
	Generator  Generator
	History    HistoryRecorder
	Vocabulary *shotprompt.Vocabulary
	Logger     *infra.Logger
}

// Service orchestrates shot planning, prompt tuning, and frame generation.
type Service struct {
	planner   planner.Planner
	generator Generator
	history   HistoryRecorder
	vocab     *shotprompt.Vocabulary
	logger    *infra.Logger
}

// TextRequest carries the direct generation inputs. At least one field must
// be set. StructuredRaw holds a caller-encoded JSON tree forwarded verbatim.
type TextRequest struct {
	Prompt        string
	Structured    shotprompt.Structured
	StructuredRaw string
}

func NewService(opts Options) (*Service, error) {
	if opts.Planner == nil {
		return nil, errors.New("studio: planner is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("studio: generator is required")
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = shotprompt.DefaultVocabulary()
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Service{
		planner:   opts.Planner,
		generator: opts.Generator,
		history:   opts.History,
		vocab:     vocab,
		logger:    logger,
	}, nil
}

// GenerateFromText renders one frame straight from the caller's prompt
// and/or structured prompt, without planning.
func (s *Service) GenerateFromText(ctx context.Context, req TextRequest) (*domain.RenderResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	raw := strings.TrimSpace(req.StructuredRaw)
	if prompt == "" && len(req.Structured) == 0 && raw == "" {
		return nil, fmt.Errorf("studio: prompt or structured_prompt is required: %w", domain.ErrInvalidInput)
	}
	result, err := s.generator.Generate(ctx, fibo.GenerateRequest{
		Prompt:        req.Prompt,
		Structured:    req.Structured,
		StructuredRaw: req.StructuredRaw,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.RenderRecord{
		Source:           domain.RenderSourceText,
		Prompt:           prompt,
		ImageURL:         result.ImageURL,
		RequestID:        result.RequestID,
		StructuredPrompt: result.StructuredPrompt,
	})
	return result, nil
}

// GenerateFromScene plans one cinematic shot for the scene and renders it.
func (s *Service) GenerateFromScene(ctx context.Context, sceneText string) (*domain.SceneRender, error) {
	if strings.TrimSpace(sceneText) == "" {
		return nil, fmt.Errorf("studio: scene_text is required: %w", domain.ErrInvalidInput)
	}
	shotPrompt, err := s.planner.ShotPrompt(ctx, sceneText)
	if err != nil {
		return nil, fmt.Errorf("studio: plan shot: %w", err)
	}
	s.logger.Debug().Int("chars", len(shotPrompt)).Msg("studio: shot prompt planned")
	result, err := s.generator.Generate(ctx, fibo.GenerateRequest{Prompt: shotPrompt})
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.RenderRecord{
		Source:           domain.RenderSourceScene,
		Prompt:           shotPrompt,
		ImageURL:         result.ImageURL,
		RequestID:        result.RequestID,
		StructuredPrompt: result.StructuredPrompt,
	})
	return &domain.SceneRender{ShotPrompt: shotPrompt, RenderResult: *result}, nil
}

// TuneAndRegenerate applies cinematography overrides to an existing
// structured prompt and renders the tuned tree, sending the generator both
// the tree and a prompt synthesized from it. The input tree is never
// modified.
func (s *Service) TuneAndRegenerate(ctx context.Context, structured shotprompt.Structured, overrides shotprompt.Overrides) (*domain.RenderResult, error) {
	if len(structured) == 0 {
		return nil, fmt.Errorf("studio: structured_prompt is required: %w", domain.ErrInvalidInput)
	}
	if overrides.IsZero() {
		s.logger.Debug().Msg("studio: tune without overrides, regenerating as-is")
	}
	tuned := s.vocab.Apply(structured, overrides)
	prompt := shotprompt.Render(tuned)
	result, err := s.generator.Generate(ctx, fibo.GenerateRequest{Prompt: prompt, Structured: tuned})
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.RenderRecord{
		Source:           domain.RenderSourceTune,
		Prompt:           prompt,
		ImageURL:         result.ImageURL,
		RequestID:        result.RequestID,
		StructuredPrompt: result.StructuredPrompt,
	})
	return result, nil
}

func (s *Service) record(ctx context.Context, rec domain.RenderRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("source", string(rec.Source)).Msg("studio: history record failed")
	}
}
