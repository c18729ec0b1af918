package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
	"hrflow/internal/services"
)

type EmailHandler struct {
	emailRepo repositories.EmailRepository
	worker    services.Worker
}

func NewEmailHandler(
	emailRepo repositories.EmailRepository,
	worker services.Worker,
) *EmailHandler {
	return &EmailHandler{
		emailRepo: emailRepo,
		worker:    worker,
	}
}

// HandleInbound handles POST /emails/inbound. The mail provider posts
// each received message here; redelivery of a known Message-ID is
// acknowledged without creating a second record.
func (h *EmailHandler) HandleInbound(c *fiber.Ctx) error {
	var req models.InboundEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.MessageID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message_id is required",
		})
	}
	if req.Sender == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sender is required",
		})
	}

	existing, err := h.emailRepo.FindByMessageID(req.MessageID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check for duplicate message",
		})
	}
	if existing != nil {
		return c.Status(fiber.StatusOK).JSON(models.InboundEmailResponse{
			ID:     existing.ID.String(),
			Status: "duplicate",
		})
	}

	email := models.InboundEmail{
		ID:         uuid.New(),
		MessageID:  req.MessageID,
		Sender:     req.Sender,
		Subject:    req.Subject,
		Body:       req.Body,
		ReceivedAt: time.Now(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.emailRepo.Create(&email); err != nil {
		// A concurrent delivery of the same Message-ID can beat us to
		// the insert; the unique index decides.
		if dup, findErr := h.emailRepo.FindByMessageID(req.MessageID); findErr == nil && dup != nil {
			return c.Status(fiber.StatusOK).JSON(models.InboundEmailResponse{
				ID:     dup.ID.String(),
				Status: "duplicate",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save inbound email",
		})
	}

	h.worker.Enqueue(services.Job{
		Kind:    services.JobInboundEmail,
		EmailID: email.ID,
	})

	return c.Status(fiber.StatusAccepted).JSON(models.InboundEmailResponse{
		ID:     email.ID.String(),
		Status: "queued",
	})
}

// HandleGetOutcome handles GET /emails/:id
func (h *EmailHandler) HandleGetOutcome(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email ID format",
		})
	}

	email, err := h.emailRepo.FindByID(emailID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Email not found",
		})
	}

	return c.JSON(models.OutcomeResponse{
		ID:             email.ID.String(),
		Classification: string(email.Classification),
		Outcome:        string(email.Outcome),
		OutcomeRef:     email.OutcomeRef,
	})
}
