package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"crisiscompass/internal/chunker"
	"crisiscompass/internal/config"
	"crisiscompass/internal/corpus"
	"crisiscompass/internal/domain"
	embopenai "crisiscompass/internal/embedding/openai"
	llmopenai "crisiscompass/internal/llm/openai"
	meminmemory "crisiscompass/internal/memory/inmemory"
	memredis "crisiscompass/internal/memory/redis"
	"crisiscompass/internal/service"
	vsmemory "crisiscompass/internal/vectorstore/memory"
	vsqdrant "crisiscompass/internal/vectorstore/qdrant"
)

// App bundles the assembled core and the loaded posts dataset.
type App struct {
	Service *service.Service
	Posts   []corpus.Post
}

// Assemble wires all components from configuration. No remote call is made
// yet; that happens in Build.
func Assemble(cfg *config.AppConfig, logger *log.Logger) (*App, error) {
	ch, err := chunker.New(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars)
	if err != nil {
		return nil, err
	}

	emb, err := embopenai.NewClient(embopenai.Config{
		BaseURL:    cfg.Embedder.BaseURL,
		APIKeyEnv:  cfg.Embedder.APIKeyEnv,
		Model:      cfg.Embedder.Model,
		Dimension:  cfg.Embedder.Dimension,
		BatchSize:  cfg.Embedder.BatchSize,
		Timeout:    time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Embedder.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	model, err := llmopenai.NewClient(llmopenai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		MaxRetries:  cfg.LLM.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	var index domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		index = vsmemory.NewStore()
	case "qdrant":
		index, err = vsqdrant.NewStore(vsqdrant.Config{
			Host:       cfg.VectorStore.Qdrant.Host,
			Port:       cfg.VectorStore.Qdrant.Port,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown vector store %q", domain.ErrConfig, cfg.VectorStore.Type)
	}

	var mem domain.MemoryStore
	switch cfg.Memory.Type {
	case "inmemory", "":
		mem = meminmemory.NewStore()
	case "redis":
		mem = memredis.NewStore(memredis.Config{
			Addr:     cfg.Memory.Redis.Addr,
			Password: cfg.Memory.Redis.Password,
			DB:       cfg.Memory.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("%w: unknown memory store %q", domain.ErrConfig, cfg.Memory.Type)
	}

	posts, err := corpus.LoadPosts(cfg.Corpus.PostsPath)
	if err != nil {
		return nil, err
	}

	svc := service.New(ch, emb, index, mem, model, service.Options{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
		HistoryWindow:  cfg.Memory.HistoryWindow,
	}, logger)

	return &App{Service: svc, Posts: posts}, nil
}

// Build loads the authority dataset and runs the one-shot corpus build.
func (a *App) Build(ctx context.Context, cfg *config.AppConfig) error {
	auth, err := corpus.LoadAuthorities(cfg.Corpus.AuthoritiesPath)
	if err != nil {
		return err
	}
	docs := corpus.Build(a.Posts, auth)
	return a.Service.Build(ctx, docs)
}
