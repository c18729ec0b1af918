package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"hrflow/internal/models"
)

// StructureCorrector runs the bounded repair loop over a StructuredCV
// with validation defects. Termination is structural: the attempt
// counter, never the content of model output.
type StructureCorrector interface {
	Correct(ctx context.Context, cvText string, cv *models.StructuredCV, defects []models.ValidationDefect) (*models.StructuredCV, int)
}

type structureCorrector struct {
	gemini        GeminiService
	validator     StructureValidator
	promptBuilder *PromptBuilder
	maxAttempts   int
	maxRetries    int
	logger        *zap.Logger
}

func NewStructureCorrector(gemini GeminiService, validator StructureValidator, maxAttempts, maxRetries int, logger *zap.Logger) StructureCorrector {
	return &structureCorrector{
		gemini:        gemini,
		validator:     validator,
		promptBuilder: NewPromptBuilder(),
		maxAttempts:   maxAttempts,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Correct implements StructureCorrector. It returns the best record it
// reached and the number of attempts spent. Each attempt replaces the
// record whole; nothing is merged across attempts. If defects remain
// after the budget, the record with the fewest defects is handed back
// flagged unresolved_defects so feedback generation can still proceed.
func (c *structureCorrector) Correct(ctx context.Context, cvText string, cv *models.StructuredCV, defects []models.ValidationDefect) (*models.StructuredCV, int) {
	if len(defects) == 0 {
		cv.Validity = models.ValidityValid
		cv.Defects = nil
		return cv, 0
	}

	best := cv
	bestDefects := defects

	attempts := 0
	for attempts < c.maxAttempts {
		attempts++

		repaired, err := c.attempt(ctx, cvText, best, bestDefects)
		if err != nil {
			c.logger.Warn("correction attempt failed",
				zap.Int("attempt", attempts),
				zap.Error(err))
			continue
		}

		repairedDefects := c.validator.Validate(repaired)
		c.logger.Debug("correction attempt validated",
			zap.Int("attempt", attempts),
			zap.Int("defects_before", len(bestDefects)),
			zap.Int("defects_after", len(repairedDefects)))

		if len(repairedDefects) == 0 {
			repaired.Validity = models.ValidityValid
			repaired.Defects = nil
			return repaired, attempts
		}

		if len(repairedDefects) < len(bestDefects) {
			best = repaired
			bestDefects = repairedDefects
		}
	}

	best.Validity = models.ValidityUnresolvedDefects
	best.Defects = bestDefects
	return best, attempts
}

func (c *structureCorrector) attempt(ctx context.Context, cvText string, cv *models.StructuredCV, defects []models.ValidationDefect) (*models.StructuredCV, error) {
	currentJSON, err := json.Marshal(cv)
	if err != nil {
		return nil, err
	}

	prompt := c.promptBuilder.BuildCorrectionPrompt(cvText, string(currentJSON), defects)

	response, err := c.gemini.GenerateTextWithRetry(ctx, prompt, 0.1, c.maxRetries)
	if err != nil {
		return nil, err
	}

	return parseStructuredCV(response)
}
