package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrflow/internal/models"
)

type OutboundRepository interface {
	Create(email *models.OutboundEmail) error
	FindByRelatedEmail(emailID uuid.UUID) ([]models.OutboundEmail, error)
}

type outboundRepository struct {
	db *gorm.DB
}

func NewOutboundRepository(db *gorm.DB) OutboundRepository {
	return &outboundRepository{db: db}
}

func (r *outboundRepository) Create(email *models.OutboundEmail) error {
	if err := r.db.Create(email).Error; err != nil {
		return fmt.Errorf("failed to record outbound email: %w", err)
	}
	return nil
}

func (r *outboundRepository) FindByRelatedEmail(emailID uuid.UUID) ([]models.OutboundEmail, error) {
	var emails []models.OutboundEmail
	err := r.db.
		Where("related_email_id = ?", emailID).
		Order("created_at ASC").
		Find(&emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find outbound emails: %w", err)
	}
	return emails, nil
}
