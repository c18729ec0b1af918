package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
	"hrflow/internal/services"
)

type UploadHandler struct {
	candidateRepo  repositories.CandidateRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	maxFileSize    int64
}

func NewUploadHandler(
	candidateRepo repositories.CandidateRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		candidateRepo:  candidateRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /candidates. Expects a multipart form with
// a "cv" PDF plus the candidate's name and email fields.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	cvFiles, exists := form.File["cv"]
	if !exists || len(cvFiles) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No CV uploaded. Please upload 'cv' as a PDF file.",
		})
	}

	cvFile := cvFiles[0]
	if cvFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	fullName := c.FormValue("full_name")
	email := c.FormValue("email")
	if fullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "full_name is required",
		})
	}
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	filename, filePath, err := h.storageService.SaveCV(cvFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save CV file: %v", err),
		})
	}

	// Extract text up front so the pipeline never touches the raw PDF.
	cvText, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract text from CV: %v", err),
		})
	}

	candidate := models.Candidate{
		ID:         uuid.New(),
		FullName:   fullName,
		Email:      email,
		Phone:      c.FormValue("phone"),
		Stage:      models.StageInitialScreening,
		CVFilePath: filePath,
		CVText:     cvText,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.candidateRepo.Create(&candidate); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save candidate record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:       candidate.ID.String(),
		FullName: candidate.FullName,
		Filename: filename,
	})
}
