package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"hrflow/internal/config"
	"hrflow/internal/logger"
	"hrflow/internal/services"
)

// Ingests the HR knowledge base into the vector store. Run once after
// provisioning, and again whenever a reference document changes.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	geminiService, err := services.NewGeminiService(cfg.Gemini, log)
	if err != nil {
		log.Fatal("failed to initialize Gemini client", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		log,
	)
	if err != nil {
		log.Fatal("failed to initialize Qdrant client", zap.Error(err))
	}
	if err := qdrantService.InitCollection(); err != nil {
		log.Fatal("failed to initialize collection", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()

	ctx := context.Background()

	documents := []struct {
		Path    string
		DocType string
		Name    string
	}{
		{
			Path:    "./reference_docs/recruitment_policy.pdf",
			DocType: "recruitment_policy",
			Name:    "Recruitment and Selection Policy",
		},
		{
			Path:    "./reference_docs/stage_criteria.pdf",
			DocType: "stage_criteria",
			Name:    "Hiring Stage Evaluation Criteria",
		},
		{
			Path:    "./reference_docs/candidate_faq.pdf",
			DocType: "candidate_faq",
			Name:    "Candidate FAQ",
		},
		{
			Path:    "./reference_docs/data_protection_notice.pdf",
			DocType: "data_protection",
			Name:    "Candidate Data Protection Notice",
		},
	}

	successCount := 0
	failCount := 0

	for _, doc := range documents {
		docLog := log.With(zap.String("name", doc.Name), zap.String("path", doc.Path))

		if _, err := os.Stat(doc.Path); os.IsNotExist(err) {
			docLog.Warn("file not found, skipping")
			failCount++
			continue
		}

		text, err := pdfParser.ExtractText(doc.Path)
		if err != nil {
			docLog.Error("failed to extract text", zap.Error(err))
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		docLog.Info("document chunked", zap.Int("chunks", len(chunks)))

		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				docLog.Error("failed to embed chunk", zap.Int("chunk", i), zap.Error(err))
				continue
			}

			docID := fmt.Sprintf("%s_chunk_%d", doc.DocType, i)
			if err := qdrantService.UpsertDocument(ctx, docID, doc.DocType, chunk, embedding); err != nil {
				docLog.Error("failed to store chunk", zap.Int("chunk", i), zap.Error(err))
				continue
			}
			stored++
		}

		docLog.Info("document ingested", zap.Int("stored", stored), zap.Int("total", len(chunks)))
		successCount++
	}

	log.Info("ingestion finished",
		zap.Int("succeeded", successCount),
		zap.Int("failed", failCount))
}
