package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"hrflow/internal/config"
)

func retrievalCfg() config.RetrievalConfig {
	return config.RetrievalConfig{TopK: 3, ScoreThreshold: 0.75}
}

func TestRetrieveFiltersAndOrders(t *testing.T) {
	qdrant := &stubQdrant{results: []SearchResult{
		{ID: "policy_chunk_2", Score: 0.81, Text: "second"},
		{ID: "policy_chunk_0", Score: 0.92, Text: "first"},
		{ID: "faq_chunk_4", Score: 0.74, Text: "below threshold"},
		{ID: "faq_chunk_1", Score: 0.79, Text: "third"},
		{ID: "policy_chunk_9", Score: 0.12, Text: "noise"},
	}}
	r := NewKnowledgeRetriever(&stubGemini{}, qdrant, retrievalCfg(), zap.NewNop())

	passages, err := r.Retrieve(context.Background(), "rejection feedback policy")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}

	if len(passages) != 3 {
		t.Fatalf("passages = %d, want 3", len(passages))
	}
	for i, p := range passages {
		if p.Score < 0.75 {
			t.Errorf("passage %d score %v below threshold", i, p.Score)
		}
		if i > 0 && passages[i-1].Score < p.Score {
			t.Errorf("passages not in descending score order at %d", i)
		}
	}
	if passages[0].SourceID != "policy_chunk_0" {
		t.Errorf("top passage = %s, want the highest-scoring hit", passages[0].SourceID)
	}
}

func TestRetrieveCapsAtTopK(t *testing.T) {
	var results []SearchResult
	for i := 0; i < 5; i++ {
		results = append(results, SearchResult{ID: "chunk", Score: 0.9, Text: "passage"})
	}
	r := NewKnowledgeRetriever(&stubGemini{}, &stubQdrant{results: results}, retrievalCfg(), zap.NewNop())

	passages, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) > 3 {
		t.Errorf("passages = %d, want at most 3", len(passages))
	}
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	qdrant := &stubQdrant{results: []SearchResult{
		{ID: "chunk", Score: 0.2, Text: "irrelevant"},
	}}
	r := NewKnowledgeRetriever(&stubGemini{}, qdrant, retrievalCfg(), zap.NewNop())

	passages, err := r.Retrieve(context.Background(), "nothing matches this")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("passages = %+v, want none", passages)
	}
}

func TestRetrievePropagatesEmbeddingFailure(t *testing.T) {
	gemini := &stubGemini{embedFn: func(string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	r := NewKnowledgeRetriever(gemini, &stubQdrant{}, retrievalCfg(), zap.NewNop())

	if _, err := r.Retrieve(context.Background(), "query"); err == nil {
		t.Fatal("expected an error when embedding fails")
	}
}
