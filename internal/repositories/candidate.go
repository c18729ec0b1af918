package repositories

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrflow/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindLatestByEmail(email string) (*models.Candidate, error)
	UpdateStage(id uuid.UUID, stage models.CandidateStage) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("candidate not found")
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

// FindLatestByEmail returns the most recently created candidate with
// the given address. Senders who applied more than once match their
// newest record.
func (r *candidateRepository) FindLatestByEmail(email string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.
		Where("lower(email) = ?", strings.ToLower(email)).
		Order("created_at DESC").
		First(&candidate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find candidate by email: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) UpdateStage(id uuid.UUID, stage models.CandidateStage) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Update("stage", stage)
	if result.Error != nil {
		return fmt.Errorf("failed to update stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}
