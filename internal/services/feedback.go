package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

// FeedbackGenerator produces the rejection-feedback artifact for a
// candidate. On AI failure it returns a typed generation error and no
// artifact; fallback boilerplate is never fabricated locally.
type FeedbackGenerator interface {
	Generate(ctx context.Context, candidateID, eventID uuid.UUID, cv *models.StructuredCV, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error)
}

type feedbackGenerator struct {
	gemini        GeminiService
	retriever     KnowledgeRetriever
	promptBuilder *PromptBuilder
	maxRetries    int
	logger        *zap.Logger
}

func NewFeedbackGenerator(gemini GeminiService, retriever KnowledgeRetriever, maxRetries int, logger *zap.Logger) FeedbackGenerator {
	return &feedbackGenerator{
		gemini:        gemini,
		retriever:     retriever,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Generate implements FeedbackGenerator.
func (f *feedbackGenerator) Generate(ctx context.Context, candidateID, eventID uuid.UUID, cv *models.StructuredCV, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error) {
	query := f.promptBuilder.BuildRetrievalQuery(stage, reason)

	// A retrieval failure degrades to ungrounded generation; delaying
	// a rejection notice over missing policy context is worse.
	passages, err := f.retriever.Retrieve(ctx, query)
	if err != nil {
		f.logger.Warn("knowledge retrieval failed, generating without grounding",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err))
		passages = nil
	}

	prompt := f.promptBuilder.BuildFeedbackPrompt(cv, stage, reason, FormatRAGContext(passages))

	body, err := f.gemini.GenerateTextWithRetry(ctx, prompt, 0.7, f.maxRetries)
	if err != nil {
		return nil, apperrors.NewGenerationError(apperrors.ErrCodeGenerationFailed,
			"feedback generation exhausted retries", err)
	}

	artifact := &models.FeedbackArtifact{
		ID:             uuid.New(),
		CandidateID:    candidateID,
		RejectionEvent: eventID,
		Stage:          stage,
		Reason:         reason,
		Body:           body,
		ConsentNotice:  f.promptBuilder.ConsentNotice(),
		Validity:       cv.Validity,
		Grounding:      passages,
		OpenDefects:    cv.Defects,
		GeneratedAt:    time.Now(),
	}

	f.logger.Info("feedback artifact generated",
		zap.String("candidate_id", candidateID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("stage", string(stage)),
		zap.String("validity", string(cv.Validity)),
		zap.Int("grounding_passages", len(passages)))

	return artifact, nil
}
