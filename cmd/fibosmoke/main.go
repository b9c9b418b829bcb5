package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/Purvav0511/cinefibo/internal/infra"
	"github.com/Purvav0511/cinefibo/internal/providers/fibo"
)

// fibosmoke submits one prompt to the FIBO engine and waits for the frame.
// It exercises the full submit and poll path against the real API, which the
// unit tests deliberately never touch.
func main() {
	var (
		promptFlag  string
		timeoutFlag time.Duration
	)
	flag.StringVar(&promptFlag, "prompt", "A cinematic wide shot of a cozy living room with warm lighting.", "prompt to render")
	flag.DurationVar(&timeoutFlag, "timeout", 5*time.Minute, "overall deadline for submit and polling")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "fibosmoke").Logger()

	client, err := fibo.NewClient(fibo.Options{
		APIKey:         cfg.FiboAPIKey,
		BaseURL:        cfg.FiboAPIBase,
		RequestTimeout: cfg.FiboRequestTimeout,
		PollInterval:   cfg.FiboPollInterval,
		MaxPolls:       cfg.FiboMaxPolls,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build FIBO client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	logger.Info().Str("prompt", promptFlag).Msg("submitting render")
	start := time.Now()

	result, err := client.Generate(ctx, fibo.GenerateRequest{Prompt: promptFlag})
	if err != nil {
		logger.Fatal().Err(err).Msg("render failed")
	}

	keys := make([]string, 0, len(result.StructuredPrompt))
	for key := range result.StructuredPrompt {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	logger.Info().
		Str("image_url", result.ImageURL).
		Str("request_id", result.RequestID).
		Strs("structured_keys", keys).
		Dur("elapsed", time.Since(start)).
		Msg("render completed")
}
