package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
	"github.com/Purvav0511/cinefibo/internal/history"
	"github.com/Purvav0511/cinefibo/internal/http/handlers"
	"github.com/Purvav0511/cinefibo/internal/http/httpapi"
	"github.com/Purvav0511/cinefibo/internal/infra"
	"github.com/Purvav0511/cinefibo/internal/providers/fibo"
	"github.com/Purvav0511/cinefibo/internal/providers/planner"
	"github.com/Purvav0511/cinefibo/internal/studio"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	vocab, err := shotprompt.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load shot vocabulary")
	}

	fiboClient, err := fibo.NewClient(fibo.Options{
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

	var shotPlanner planner.Planner
	if cfg.OpenAIAPIKey != "" {
		openAIPlanner, err := planner.NewOpenAIPlanner(planner.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build OpenAI planner")
		}
		shotPlanner = openAIPlanner
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set, falling back to the static shot planner")
		shotPlanner = planner.NewStaticPlanner()
	}

	ctx := context.Background()

	var store *history.Store
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		store = history.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare render history schema")
		}
	} else {
		logger.Warn().Msg("DATABASE_URL is not set, render history is disabled")
	}

	// A nil *Store must stay a nil interface, so only assign when present.
	var recorder studio.HistoryRecorder
	var reader handlers.HistoryReader
	if store != nil {
		recorder = store
		reader = store
	}

	svc, err := studio.NewService(studio.Options{
		Planner:    shotPlanner,
		Generator:  fiboClient,
		History:    recorder,
		Vocabulary: vocab,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build studio service")
	}

	app := handlers.NewApp(svc, reader, &logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
