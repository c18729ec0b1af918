package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"hrflow/internal/config"
	"hrflow/internal/models"
)

// KnowledgeRetriever returns the indexed passages most similar to a
// query. An empty result is a normal answer, not a failure; callers
// proceed without grounding.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string) ([]models.RetrievedPassage, error)
}

type knowledgeRetriever struct {
	gemini    GeminiService
	qdrant    QdrantService
	topK      int
	threshold float32
	logger    *zap.Logger
}

func NewKnowledgeRetriever(gemini GeminiService, qdrant QdrantService, cfg config.RetrievalConfig, logger *zap.Logger) KnowledgeRetriever {
	return &knowledgeRetriever{
		gemini:    gemini,
		qdrant:    qdrant,
		topK:      cfg.TopK,
		threshold: cfg.ScoreThreshold,
		logger:    logger,
	}
}

// Retrieve implements KnowledgeRetriever.
func (k *knowledgeRetriever) Retrieve(ctx context.Context, query string) ([]models.RetrievedPassage, error) {
	embedding, err := k.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := k.qdrant.SearchSimilar(ctx, embedding, k.topK)
	if err != nil {
		return nil, err
	}

	passages := make([]models.RetrievedPassage, 0, len(results))
	for _, result := range results {
		if result.Score < k.threshold {
			continue
		}
		passages = append(passages, models.RetrievedPassage{
			SourceID: result.ID,
			Text:     result.Text,
			Score:    result.Score,
		})
	}

	// The index already orders hits, but the contract is descending
	// score regardless of backend.
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if len(passages) > k.topK {
		passages = passages[:k.topK]
	}

	k.logger.Debug("knowledge retrieval completed",
		zap.Int("candidates", len(results)),
		zap.Int("passages", len(passages)),
		zap.Float32("threshold", k.threshold))

	return passages, nil
}
