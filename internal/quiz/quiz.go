// Package quiz generates multiple-choice questions from source text via
// the generation model, with strict recovery of JSON-ish output.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"onboard-ai/internal/config"
	"onboard-ai/internal/llmservice"
	"onboard-ai/internal/models"
)

// wrapperKeys are conventional object keys models wrap the question
// array under instead of returning a bare list.
var wrapperKeys = []string{"questions", "quiz", "test"}

// Generator prompts the generation model for a fixed JSON schema of
// questions and validates the result. All failures are recovered into
// an empty list; callers treat emptiness as the failure signal.
type Generator struct {
	llm llmservice.Generator
	cfg *config.QuizConfig
}

func New(llm llmservice.Generator, cfg *config.QuizConfig) *Generator {
	return &Generator{llm: llm, cfg: cfg}
}

// GenerateQuiz creates questions from textContent, truncated to the
// configured character budget. Longer sources generate from their
// prefix only; this bounds cost, it is not summarization.
func (g *Generator) GenerateQuiz(ctx context.Context, textContent, difficulty string) []models.GeneratedQuestion {
	if difficulty == "" {
		difficulty = "medium"
	}
	if len(textContent) > g.cfg.MaxChars {
		textContent = textContent[:g.cfg.MaxChars]
	}
	prompt := fmt.Sprintf(models.QuizPromptTemplate, g.cfg.QuestionCount, difficulty, textContent)

	raw, err := g.llm.Generate(ctx, "", prompt, llmservice.GenerateOptions{
		JSONMode:    true,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		log.Error().Err(err).Msg("Quiz generation call failed")
		return nil
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		log.Error().Err(err).Str("raw", truncate(raw, 200)).Msg("Quiz output rejected")
		return nil
	}
	log.Info().Int("questions", len(questions)).Msg("Parsed generated quiz")
	return questions
}

// parseQuestions runs the extraction cascade, unwraps conventional
// wrapper objects and validates every element. One invalid element
// rejects the whole batch.
func parseQuestions(raw string) ([]models.GeneratedQuestion, error) {
	extracted := extractJSON(raw)

	var value any
	if err := json.Unmarshal([]byte(extracted), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	list, ok := value.([]any)
	if !ok {
		obj, isObj := value.(map[string]any)
		if !isObj {
			return nil, fmt.Errorf("expected a list, got %T", value)
		}
		for _, key := range wrapperKeys {
			if wrapped, isList := obj[key].([]any); isList {
				list = wrapped
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("object has no question list under %v", wrapperKeys)
		}
	}

	// Re-encode the resolved list so element validation goes through the
	// typed schema.
	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	var questions []models.GeneratedQuestion
	if err := json.Unmarshal(encoded, &questions); err != nil {
		return nil, fmt.Errorf("schema mismatch: %w", err)
	}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return questions, nil
}

func validateQuestion(q models.GeneratedQuestion) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("empty question_text")
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("no options")
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("option %d has empty text", i)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
