package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"onboard-ai/internal/chunker"
	"onboard-ai/internal/config"
	"onboard-ai/internal/embedding"
	"onboard-ai/internal/helper"
	"onboard-ai/internal/llmservice"
	"onboard-ai/internal/quiz"
	"onboard-ai/internal/rag"
	"onboard-ai/internal/server"
	"onboard-ai/internal/vectordb"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()
	store := newStore(ctx, cfg)
	defer store.Close()

	embedder, err := embedding.NewFallbackEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewOllamaGenerator(&cfg.GenLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generation LLM")
	}

	orchestrator := rag.New(store, embedder, generator, &cfg.RAG)
	quizGen := quiz.New(generator, &cfg.Quiz)
	srv := server.New(chunker.New(&cfg.RAG), orchestrator, quizGen)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting AI service")
		if err := srv.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

func newStore(ctx context.Context, cfg *config.Config) vectordb.Store {
	switch cfg.Vector.Backend {
	case "postgres":
		store, err := vectordb.NewPostgresStore(ctx, cfg.Vector.PostgresDSN, cfg.Vector.Debug)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to Postgres vector store")
		}
		return store
	default:
		if err := helper.CreateFolder(cfg.Vector.ChromemPath); err != nil {
			log.Fatal().Err(err).Msg("Error creating vector store folder")
		}
		store, err := vectordb.NewChromemStore(cfg.Vector.ChromemPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening chromem vector store")
		}
		return store
	}
}
