package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

// Classification is the classifier's verdict for one inbound email.
type Classification struct {
	Category   models.EmailCategory `json:"category"`
	Confidence float64              `json:"confidence"`
	Reasoning  string               `json:"reasoning"`
}

// EmailClassifier assigns one label from the closed taxonomy to an
// inbound email. It never fails: anything it cannot classify resolves
// to other_unclassifiable so the message still reaches a human.
type EmailClassifier interface {
	Classify(ctx context.Context, email *models.InboundEmail) Classification
}

type emailClassifier struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	logger        *zap.Logger
}

func NewEmailClassifier(gemini GeminiService, maxRetries int, logger *zap.Logger) EmailClassifier {
	return &emailClassifier{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Classify implements EmailClassifier.
func (c *emailClassifier) Classify(ctx context.Context, email *models.InboundEmail) Classification {
	prompt := c.promptBuilder.BuildClassificationPrompt(email.Sender, email.Subject, email.Body)

	// Low temperature keeps label assignment consistent.
	response, err := c.gemini.GenerateTextWithRetry(ctx, prompt, 0.1, c.maxRetries)
	if err != nil {
		c.logger.Warn("classification call failed, resolving to unclassifiable",
			zap.String("email_id", email.ID.String()),
			zap.Error(apperrors.NewClassificationError(apperrors.ErrCodeAIServiceFailed, "classification call failed", err)))
		return unclassifiable("classification call failed")
	}

	var result Classification
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		c.logger.Warn("classification response unparseable, resolving to unclassifiable",
			zap.String("email_id", email.ID.String()),
			zap.Error(apperrors.NewClassificationError(apperrors.ErrCodeAIResponseInvalid, "classification response unparseable", err)))
		return unclassifiable("classification response unparseable")
	}

	if !models.ValidCategory(result.Category) {
		c.logger.Warn("classifier returned label outside the closed set",
			zap.String("email_id", email.ID.String()),
			zap.String("label", string(result.Category)))
		return unclassifiable("label outside the closed set")
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result
}

func unclassifiable(reason string) Classification {
	return Classification{
		Category:   models.CategoryUnclassifiable,
		Confidence: 0,
		Reasoning:  reason,
	}
}
