package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crisiscompass/internal/domain"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CorpusConfig points at the two source datasets.
type CorpusConfig struct {
	PostsPath       string `yaml:"posts_path"`
	AuthoritiesPath string `yaml:"authorities_path"`
}

// ChunkerConfig configures how post texts are split into chunks.
type ChunkerConfig struct {
	MaxChars     int `yaml:"max_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

// EmbedderConfig configures the OpenAI-compatible embeddings client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// LLMConfig configures the chat-completions client.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrievalConfig bounds similarity search.
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float32 `yaml:"score_threshold"`
}

// RedisConfig contains connection details for the redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MemoryConfig selects the session store and bounds the history window
// folded into prompts.
type MemoryConfig struct {
	Type          string       `yaml:"type"`
	HistoryWindow int          `yaml:"history_window"`
	Redis         *RedisConfig `yaml:"redis,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Memory      MemoryConfig      `yaml:"memory"`
}

// Load reads a config from the given path, fills defaults and validates.
// A missing file yields pure defaults.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfig, path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfig, path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects parameter combinations that would break the pipeline,
// most importantly a chunk overlap that would never terminate.
func (c *AppConfig) Validate() error {
	if c.Chunker.MaxChars <= 0 {
		return fmt.Errorf("%w: chunker.max_chars must be positive, got %d", domain.ErrConfig, c.Chunker.MaxChars)
	}
	if c.Chunker.OverlapChars < 0 || c.Chunker.OverlapChars >= c.Chunker.MaxChars {
		return fmt.Errorf("%w: chunker.overlap_chars must be in [0, max_chars), got %d", domain.ErrConfig, c.Chunker.OverlapChars)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("%w: embedder.dimension must be positive", domain.ErrConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrConfig)
	}
	if c.Retrieval.ScoreThreshold < 0 {
		return fmt.Errorf("%w: retrieval.score_threshold must not be negative", domain.ErrConfig)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil {
			return fmt.Errorf("%w: vector_store.qdrant section missing", domain.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown vector store %q", domain.ErrConfig, c.VectorStore.Type)
	}
	switch c.Memory.Type {
	case "inmemory":
	case "redis":
		if c.Memory.Redis == nil {
			return fmt.Errorf("%w: memory.redis section missing", domain.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown memory store %q", domain.ErrConfig, c.Memory.Type)
	}
	return nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Addr: ":8000"},
		Corpus: CorpusConfig{
			PostsPath:       "Cleaned.json",
			AuthoritiesPath: "state_authorities.json",
		},
		Chunker: ChunkerConfig{MaxChars: 400, OverlapChars: 80},
		Embedder: EmbedderConfig{
			BaseURL:   "https://api.cohere.com/compat/v1",
			APIKeyEnv: "COHERE_API_KEY",
			Model:     "embed-english-v3.0",
			Dimension: 4096,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			APIKeyEnv:   "GROQ_API_KEY",
			Model:       "meta-llama/llama-4-scout-17b-16e-instruct",
			Temperature: 0.2,
		},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{TopK: 20, ScoreThreshold: 0.00001},
		Memory:      MemoryConfig{Type: "inmemory", HistoryWindow: 6},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 64
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Embedder.MaxRetries == 0 {
		cfg.Embedder.MaxRetries = 5
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.Memory.HistoryWindow == 0 {
		cfg.Memory.HistoryWindow = 6
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "helper"
		}
	}
	if cfg.Memory.Type == "" {
		cfg.Memory.Type = "inmemory"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 20
	}
}
