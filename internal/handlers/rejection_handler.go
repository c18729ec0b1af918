package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
	"hrflow/internal/services"
)

type RejectionHandler struct {
	candidateRepo repositories.CandidateRepository
	worker        services.Worker
}

func NewRejectionHandler(
	candidateRepo repositories.CandidateRepository,
	worker services.Worker,
) *RejectionHandler {
	return &RejectionHandler{
		candidateRepo: candidateRepo,
		worker:        worker,
	}
}

// HandleReject handles POST /candidates/:id/reject
func (h *RejectionHandler) HandleReject(c *fiber.Ctx) error {
	idParam := c.Params("id")
	candidateID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	var req models.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	stage := models.CandidateStage(req.Stage)
	if !models.ValidStage(stage) || stage == models.StageRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "stage must be a valid pipeline stage",
		})
	}

	if _, err := h.candidateRepo.FindByID(candidateID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	// Each request is its own rejection event; re-rejecting the same
	// candidate later yields a new event and a new artifact.
	eventID := uuid.New()

	h.worker.Enqueue(services.Job{
		Kind:        services.JobRejection,
		CandidateID: candidateID,
		EventID:     eventID,
		Stage:       stage,
		Reason:      req.Reason,
	})

	return c.Status(fiber.StatusAccepted).JSON(models.RejectResponse{
		CandidateID:    candidateID.String(),
		RejectionEvent: eventID.String(),
		Status:         "queued",
	})
}
