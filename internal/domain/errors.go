package domain

import "errors"

// Error kinds surfaced to callers. Build-time kinds (corpus, config) abort
// startup; query-time kinds propagate per call. Match with errors.Is.
var (
	ErrCorpusLoad    = errors.New("corpus load failed")
	ErrConfig        = errors.New("invalid configuration")
	ErrEmbedding     = errors.New("embedding service failed")
	ErrIndex         = errors.New("vector index failed")
	ErrLanguageModel = errors.New("language model failed")
	ErrNotReady      = errors.New("index not built yet")
)
