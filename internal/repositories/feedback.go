package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrflow/internal/models"
)

type FeedbackRepository interface {
	Create(artifact *models.FeedbackArtifact) error
	FindByID(id uuid.UUID) (*models.FeedbackArtifact, error)
	FindByEventID(eventID uuid.UUID) (*models.FeedbackArtifact, error)
	FindByCandidate(candidateID uuid.UUID) ([]models.FeedbackArtifact, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(artifact *models.FeedbackArtifact) error {
	if err := r.db.Create(artifact).Error; err != nil {
		return fmt.Errorf("failed to create feedback artifact: %w", err)
	}
	return nil
}

func (r *feedbackRepository) FindByID(id uuid.UUID) (*models.FeedbackArtifact, error) {
	var artifact models.FeedbackArtifact
	if err := r.db.Where("id = ?", id).First(&artifact).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("feedback artifact not found")
		}
		return nil, fmt.Errorf("failed to find feedback artifact: %w", err)
	}
	return &artifact, nil
}

// FindByEventID looks up the artifact for a rejection event. A nil
// result with nil error means no artifact exists yet; combined with
// the unique index on the event column this keeps artifacts
// exactly-once under request retries.
func (r *feedbackRepository) FindByEventID(eventID uuid.UUID) (*models.FeedbackArtifact, error) {
	var artifact models.FeedbackArtifact
	err := r.db.Where("rejection_event = ?", eventID).First(&artifact).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find feedback artifact: %w", err)
	}
	return &artifact, nil
}

func (r *feedbackRepository) FindByCandidate(candidateID uuid.UUID) ([]models.FeedbackArtifact, error) {
	var artifacts []models.FeedbackArtifact
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Order("generated_at DESC").
		Find(&artifacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback artifacts: %w", err)
	}
	return artifacts, nil
}
