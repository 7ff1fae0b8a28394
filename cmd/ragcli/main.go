package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"onboard-ai/internal/chunker"
	"onboard-ai/internal/config"
	"onboard-ai/internal/embedding"
	"onboard-ai/internal/helper"
	"onboard-ai/internal/llmservice"
	"onboard-ai/internal/rag"
	"onboard-ai/internal/vectordb"
)

// One-shot CLI against the same pipeline the service runs: ingest a file
// into a workspace collection or ask it a question.

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	query := flag.String("query", "", "Question to ask the knowledge base")
	workspace := flag.String("workspace", "local", "Workspace id")
	dryRun := flag.Bool("dry-run", false, "Chunk only, do not embed or store")
	flag.Parse()

	if (*filePath == "") == (*query == "") {
		log.Fatal().Msg("Provide either -file or -query, but not both")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("Config not loaded, using defaults")
		cfg = config.Default()
	}

	ctx := context.Background()

	if *filePath != "" {
		ingestFile(ctx, cfg, *workspace, *filePath, *dryRun)
		return
	}
	askQuestion(ctx, cfg, *workspace, *query)
}

func ingestFile(ctx context.Context, cfg *config.Config, workspace, filePath string, dryRun bool) {
	chunks, err := chunker.New(&cfg.RAG).ChunkFile(filePath, filepath.Base(filePath))
	if err != nil {
		log.Fatal().Err(err).Msg("Error chunking document")
	}
	log.Info().Int("chunks", len(chunks)).Msg("Chunked document")

	if dryRun {
		helper.PrettyPrint(chunks)
		return
	}

	sourceID, err := helper.GenerateUUID()
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating source id")
	}

	orchestrator := newOrchestrator(ctx, cfg)
	if err := orchestrator.Ingest(ctx, workspace, sourceID, chunks); err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}
	fmt.Printf("Ingested %d chunks as source %s\n", len(chunks), sourceID)
}

func askQuestion(ctx context.Context, cfg *config.Config, workspace, question string) {
	orchestrator := newOrchestrator(ctx, cfg)
	response, err := orchestrator.Query(ctx, workspace, question, "cli")
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	fmt.Printf("Question: %s\n\n", question)
	fmt.Printf("Answer: %s\n\n", response.Answer)
	for _, source := range response.Sources {
		if source.Page != nil {
			fmt.Printf("Source: %s (page %d)\n", source.Name, *source.Page)
		} else {
			fmt.Printf("Source: %s\n", source.Name)
		}
	}
}

func newOrchestrator(ctx context.Context, cfg *config.Config) *rag.Orchestrator {
	if err := helper.CreateFolder(cfg.Vector.ChromemPath); err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store folder")
	}
	store, err := vectordb.NewChromemStore(cfg.Vector.ChromemPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}

	embedder, err := embedding.NewFallbackEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewOllamaGenerator(&cfg.GenLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generation LLM")
	}

	return rag.New(store, embedder, generator, &cfg.RAG)
}
