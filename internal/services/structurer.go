package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

// CVStructurer turns raw CV text into a StructuredCV via an AI
// extraction call. Semantic quality is the validator's concern; this
// stage only fails when the text cannot be interpreted at all.
type CVStructurer interface {
	Structure(ctx context.Context, cvText string) (*models.StructuredCV, error)
}

type cvStructurer struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	logger        *zap.Logger
}

func NewCVStructurer(gemini GeminiService, maxRetries int, logger *zap.Logger) CVStructurer {
	return &cvStructurer{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Structure implements CVStructurer.
func (s *cvStructurer) Structure(ctx context.Context, cvText string) (*models.StructuredCV, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, apperrors.NewExtractionError(apperrors.ErrCodeExtractionFailed,
			"cv text is empty", nil)
	}

	prompt := s.promptBuilder.BuildExtractionPrompt(cvText)

	response, err := s.gemini.GenerateTextWithRetry(ctx, prompt, 0.1, s.maxRetries)
	if err != nil {
		return nil, apperrors.NewExtractionError(apperrors.ErrCodeExtractionFailed,
			"extraction call failed", err)
	}

	cv, err := parseStructuredCV(response)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("cv structured",
		zap.String("candidate", cv.FullName),
		zap.Int("experience_entries", len(cv.Experience)),
		zap.Int("education_entries", len(cv.Education)))

	return cv, nil
}

func parseStructuredCV(response string) (*models.StructuredCV, error) {
	var cv models.StructuredCV
	if err := json.Unmarshal([]byte(extractJSON(response)), &cv); err != nil {
		return nil, apperrors.NewExtractionError(apperrors.ErrCodeAIResponseInvalid,
			"extraction response is not a structured record", err)
	}
	cv.Validity = models.ValidityUnknown
	cv.Defects = nil
	return &cv, nil
}
