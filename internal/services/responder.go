package services

import (
	"context"

	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

// Answer is a composed auto-reply plus the grounding it rests on.
// Grounded is false when no passage cleared the similarity threshold;
// the router forwards such questions to a human instead of sending.
type Answer struct {
	Body      string
	Grounding []models.RetrievedPassage
	Grounded  bool
}

// QueryResponder composes reply text for candidate questions using
// retrieved knowledge.
type QueryResponder interface {
	Compose(ctx context.Context, email *models.InboundEmail) (*Answer, error)
}

type queryResponder struct {
	gemini        GeminiService
	retriever     KnowledgeRetriever
	promptBuilder *PromptBuilder
	maxRetries    int
	logger        *zap.Logger
}

func NewQueryResponder(gemini GeminiService, retriever KnowledgeRetriever, maxRetries int, logger *zap.Logger) QueryResponder {
	return &queryResponder{
		gemini:        gemini,
		retriever:     retriever,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Compose implements QueryResponder.
func (r *queryResponder) Compose(ctx context.Context, email *models.InboundEmail) (*Answer, error) {
	passages, err := r.retriever.Retrieve(ctx, email.Subject+"\n"+email.Body)
	if err != nil {
		return nil, err
	}

	if len(passages) == 0 {
		r.logger.Debug("no grounding passages for question",
			zap.String("email_id", email.ID.String()))
		return &Answer{Grounded: false}, nil
	}

	prompt := r.promptBuilder.BuildAnswerPrompt(email.Subject, email.Body, FormatRAGContext(passages))

	body, err := r.gemini.GenerateTextWithRetry(ctx, prompt, 0.4, r.maxRetries)
	if err != nil {
		return nil, apperrors.NewGenerationError(apperrors.ErrCodeGenerationFailed,
			"answer composition exhausted retries", err)
	}

	return &Answer{
		Body:      body,
		Grounding: passages,
		Grounded:  true,
	}, nil
}
