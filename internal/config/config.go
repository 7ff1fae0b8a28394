package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	GenLLM   LLMConfig    `yaml:"gen_llm"`
	Vector   VectorConfig `yaml:"vector"`
	RAG      RAGConfig    `yaml:"rag"`
	Quiz     QuizConfig   `yaml:"quiz"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Duration accepts Go duration strings ("5m", "300s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type LLMConfig struct {
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	FallbackModels []string `yaml:"fallback_models"`
	Timeout        Duration `yaml:"timeout"`
}

// Models returns the primary model followed by the configured fallbacks.
func (c *LLMConfig) Models() []string {
	return append([]string{c.Model}, c.FallbackModels...)
}

type VectorConfig struct {
	Backend     string `yaml:"backend"` // "chromem" or "postgres"
	ChromemPath string `yaml:"chromem_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Dimensions  int    `yaml:"dimensions"`
	Debug       bool   `yaml:"debug"`
}

type RAGConfig struct {
	PersonaPrompt      string  `yaml:"persona_prompt"`
	RelevanceThreshold float32 `yaml:"relevance_threshold"`
	TopK               int     `yaml:"top_k"`
	ChunkSize          int     `yaml:"chunk_size"`
	ChunkOverlap       int     `yaml:"chunk_overlap"`
}

type QuizConfig struct {
	QuestionCount int     `yaml:"question_count"`
	MaxChars      int     `yaml:"max_chars"`
	Temperature   float64 `yaml:"temperature"`
}

const (
	defaultAddr               = ":8090"
	defaultEmbedModel         = "nomic-embed-text"
	defaultEmbedFallback      = "nomic-embed-text-v1.5"
	defaultGenModel           = "llama3:8b-instruct"
	defaultOllamaURL          = "http://localhost:11434"
	defaultBackend            = "chromem"
	defaultChromemPath        = "./chromemdb"
	defaultDimensions         = 768
	defaultRelevanceThreshold = 0.5
	defaultTopK               = 5
	defaultChunkSize          = 1000
	defaultChunkOverlap       = 200
	defaultQuestionCount      = 3
	defaultQuizMaxChars       = 3000
	defaultQuizTemperature    = 0.1
	defaultLLMTimeout         = Duration(5 * time.Minute)
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a config file, e.g. in the CLI.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = defaultOllamaURL
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = defaultEmbedModel
		if len(cfg.EmbedLLM.FallbackModels) == 0 {
			cfg.EmbedLLM.FallbackModels = []string{defaultEmbedFallback}
		}
	}
	if cfg.EmbedLLM.Timeout == 0 {
		cfg.EmbedLLM.Timeout = defaultLLMTimeout
	}
	if cfg.GenLLM.BaseURL == "" {
		cfg.GenLLM.BaseURL = defaultOllamaURL
	}
	if cfg.GenLLM.Model == "" {
		cfg.GenLLM.Model = defaultGenModel
	}
	if cfg.GenLLM.Timeout == 0 {
		cfg.GenLLM.Timeout = defaultLLMTimeout
	}
	if cfg.Vector.Backend == "" {
		cfg.Vector.Backend = defaultBackend
	}
	if cfg.Vector.ChromemPath == "" {
		cfg.Vector.ChromemPath = defaultChromemPath
	}
	if cfg.Vector.Dimensions == 0 {
		cfg.Vector.Dimensions = defaultDimensions
	}
	if cfg.RAG.RelevanceThreshold == 0 {
		cfg.RAG.RelevanceThreshold = defaultRelevanceThreshold
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.Quiz.QuestionCount == 0 {
		cfg.Quiz.QuestionCount = defaultQuestionCount
	}
	if cfg.Quiz.MaxChars == 0 {
		cfg.Quiz.MaxChars = defaultQuizMaxChars
	}
	if cfg.Quiz.Temperature == 0 {
		cfg.Quiz.Temperature = defaultQuizTemperature
	}
}
