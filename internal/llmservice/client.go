package llmservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"onboard-ai/internal/config"
	"onboard-ai/internal/models"
)

// GenerateOptions tune a single generation call.
type GenerateOptions struct {
	// JSONMode requests the backend's JSON-constrained output format.
	JSONMode bool
	// Temperature overrides the model default when > 0.
	Temperature float64
}

// Generator is the text-generation seam of the pipeline. The orchestrator
// and quiz generator depend on it, tests fake it.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, opts GenerateOptions) (string, error)
}

// OllamaGenerator calls a generation model on an Ollama server.
type OllamaGenerator struct {
	cfg *config.LLMConfig
	llm *ollama.LLM
}

var _ Generator = (*OllamaGenerator)(nil)

func NewOllamaGenerator(cfg *config.LLMConfig) (*OllamaGenerator, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation LLM: %w", err)
	}
	return &OllamaGenerator{cfg: cfg, llm: llm}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout.Std())
	defer cancel()

	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.MessageContent{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  schema.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
	})

	var callOpts []llms.CallOption
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}

	log.Debug().Str("model", g.cfg.Model).Bool("json_mode", opts.JSONMode).Msg("Generating content")
	res, err := g.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationService, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrGenerationService)
	}
	return res.Choices[0].Content, nil
}
