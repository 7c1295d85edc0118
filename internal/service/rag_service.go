package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"crisiscompass/internal/chunker"
	"crisiscompass/internal/domain"
)

const systemPrompt = `You are CrisisCompass, a helpful emergency response assistant for India.
You have access to information about:
1. Medical emergency posts and experiences
2. Important NGOs providing medical assistance
3. Emergency helpline numbers (112, 108, 102, 104, 1098)
4. Government authorities and agencies

Use ONLY the provided context to answer the user's question.
When providing contact information or emergency numbers, be precise and clear.
If the context does not contain enough information, say so clearly.`

const summarizePrompt = `You are a Indian language expert and a text summarization expert. Summarize the given text in English if it is not in English. Keep the summary concise give the summary in following pointer (well formatted bold the heading ) Requirements/Need:- , Contact Details:- ,Help Location :-(if mentioned) , Tagged Authority:-(@tagged things in text)`

// Options bound retrieval and prompt composition.
type Options struct {
	TopK           int
	ScoreThreshold float32
	HistoryWindow  int
}

// Service is the retrieval-augmented answerer. It is built once over the
// corpus and then serves Chat calls; Chat against an unbuilt service fails
// with ErrNotReady rather than answering from a partial index.
type Service struct {
	chunker  *chunker.Chunker
	embedder domain.Embedder
	index    domain.VectorStore
	memory   domain.MemoryStore
	model    domain.CompletionModel
	opts     Options
	logger   *log.Logger
	ready    atomic.Bool
}

func New(ch *chunker.Chunker, emb domain.Embedder, index domain.VectorStore, mem domain.MemoryStore, model domain.CompletionModel, opts Options, logger *log.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 6
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		chunker:  ch,
		embedder: emb,
		index:    index,
		memory:   mem,
		model:    model,
		opts:     opts,
		logger:   logger,
	}
}

// Build chunks, embeds and indexes the corpus, then marks the service
// ready. It runs to completion before any query traffic is served; any
// failure aborts with nothing marked ready.
func (s *Service) Build(ctx context.Context, docs []domain.Document) error {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, text := range s.split(doc) {
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Text:     text,
				Metadata: doc.Metadata,
			})
		}
	}

	if err := s.index.Init(ctx, s.embedder.Dimension()); err != nil {
		return err
	}
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if err := s.index.Upsert(ctx, chunks, vectors); err != nil {
			return err
		}
	}
	s.logger.Printf("indexed %d chunks from %d documents", len(chunks), len(docs))
	s.ready.Store(true)
	return nil
}

// split applies the chunker to post texts only; authority paragraphs are
// short and pass through whole.
func (s *Service) split(doc domain.Document) []string {
	if src, _ := doc.Metadata["source"].(string); src == "posts" {
		return s.chunker.Chunk(doc.Text)
	}
	if doc.Text == "" {
		return nil
	}
	return []string{doc.Text}
}

// Ready reports whether the corpus has been built.
func (s *Service) Ready() bool { return s.ready.Load() }

// Chat answers a query grounded in retrieved context, updating the
// session's transcript. Embedding, retrieval and completion failures all
// propagate as their own error kinds; an error never produces an
// empty-string success.
func (s *Service) Chat(ctx context.Context, query, sessionID string) (string, error) {
	if !s.ready.Load() {
		return "", domain.ErrNotReady
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrEmbedding, len(vectors))
	}

	results, err := s.index.Query(ctx, vectors[0], s.opts.TopK, s.opts.ScoreThreshold)
	if err != nil {
		return "", err
	}

	history, err := s.memory.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(history) > s.opts.HistoryWindow {
		history = history[len(history)-s.opts.HistoryWindow:]
	}

	messages := make([]domain.Turn, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Turn{
		Role:    domain.RoleHuman,
		Content: fmt.Sprintf("User Query: %s\n\nContext:\n%s", query, contextBlock(results)),
	})

	answer, err := s.model.Complete(ctx, systemPrompt, messages)
	if err != nil {
		return "", err
	}

	err = s.memory.Append(ctx, sessionID,
		domain.Turn{Role: domain.RoleHuman, Content: query},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
	if err != nil {
		return "", fmt.Errorf("append transcript for session %s: %w", sessionID, err)
	}
	return answer, nil
}

// Summarize condenses a single report into the fixed heading format.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	return s.model.Complete(ctx, summarizePrompt, []domain.Turn{
		{Role: domain.RoleHuman, Content: text},
	})
}

func contextBlock(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "(no context matched the query)"
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}
