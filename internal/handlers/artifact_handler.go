package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
)

type ArtifactHandler struct {
	feedbackRepo repositories.FeedbackRepository
}

func NewArtifactHandler(feedbackRepo repositories.FeedbackRepository) *ArtifactHandler {
	return &ArtifactHandler{
		feedbackRepo: feedbackRepo,
	}
}

// HandleGetArtifact handles GET /rejections/:event_id
func (h *ArtifactHandler) HandleGetArtifact(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid rejection event ID format",
		})
	}

	artifact, err := h.feedbackRepo.FindByEventID(eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to look up feedback artifact",
		})
	}
	if artifact == nil {
		// Either the event is unknown or generation has not finished.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Feedback artifact not found",
		})
	}

	return c.JSON(artifactResponse(artifact))
}

// HandleListCandidateArtifacts handles GET /candidates/:id/feedback
func (h *ArtifactHandler) HandleListCandidateArtifacts(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	artifacts, err := h.feedbackRepo.FindByCandidate(candidateID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to look up feedback artifacts",
		})
	}

	responses := make([]models.ArtifactResponse, 0, len(artifacts))
	for i := range artifacts {
		responses = append(responses, artifactResponse(&artifacts[i]))
	}

	return c.JSON(fiber.Map{
		"candidate_id": candidateID.String(),
		"artifacts":    responses,
	})
}

func artifactResponse(a *models.FeedbackArtifact) models.ArtifactResponse {
	return models.ArtifactResponse{
		ID:            a.ID.String(),
		CandidateID:   a.CandidateID.String(),
		Stage:         string(a.Stage),
		Body:          a.Body,
		ConsentNotice: a.ConsentNotice,
		Validity:      string(a.Validity),
		Grounding:     a.Grounding,
		GeneratedAt:   a.GeneratedAt.Format(time.RFC3339),
	}
}
