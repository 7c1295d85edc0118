package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"crisiscompass/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.Server.Addr)
	require.Equal(t, 400, cfg.Chunker.MaxChars)
	require.Equal(t, 80, cfg.Chunker.OverlapChars)
	require.Equal(t, 4096, cfg.Embedder.Dimension)
	require.Equal(t, 20, cfg.Retrieval.TopK)
	require.Equal(t, 6, cfg.Memory.HistoryWindow)
	require.Equal(t, "memory", cfg.VectorStore.Type)
	require.Equal(t, "inmemory", cfg.Memory.Type)
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
chunker:
  max_chars: 500
  overlap_chars: 50
vector_store:
  type: qdrant
  qdrant:
    collection: crisis
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, 500, cfg.Chunker.MaxChars)
	require.Equal(t, "qdrant", cfg.VectorStore.Type)
	require.Equal(t, "localhost", cfg.VectorStore.Qdrant.Host)
	require.Equal(t, 6334, cfg.VectorStore.Qdrant.Port)
	require.Equal(t, "crisis", cfg.VectorStore.Qdrant.Collection)
	require.Equal(t, 64, cfg.Embedder.BatchSize)
	require.Equal(t, 2, cfg.LLM.MaxRetries)
}

func TestLoadRejectsOverlapAtOrAboveMax(t *testing.T) {
	path := writeConfig(t, `
chunker:
  max_chars: 100
  overlap_chars: 100
`)
	_, err := Load(path)
	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoadRejectsUnknownStores(t *testing.T) {
	path := writeConfig(t, `
vector_store:
  type: pinecone
`)
	_, err := Load(path)
	require.ErrorIs(t, err, domain.ErrConfig)

	path = writeConfig(t, `
memory:
  type: dynamo
`)
	_, err = Load(path)
	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "chunker: [")
	_, err := Load(path)
	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoadRejectsMissingSubsection(t *testing.T) {
	path := writeConfig(t, `
memory:
  type: redis
`)
	_, err := Load(path)
	require.ErrorIs(t, err, domain.ErrConfig)
}
