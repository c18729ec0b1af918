package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrflow/internal/models"
)

type EmailRepository interface {
	Create(email *models.InboundEmail) error
	FindByID(id uuid.UUID) (*models.InboundEmail, error)
	FindByMessageID(messageID string) (*models.InboundEmail, error)
	FindUnrouted(limit int) ([]models.InboundEmail, error)
	SetClassification(id uuid.UUID, category models.EmailCategory, confidence float64) error
	SetOutcome(id uuid.UUID, outcome models.RoutingOutcome, outcomeRef string) (bool, error)
}

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) Create(email *models.InboundEmail) error {
	if err := r.db.Create(email).Error; err != nil {
		return fmt.Errorf("failed to create inbound email: %w", err)
	}
	return nil
}

func (r *emailRepository) FindByID(id uuid.UUID) (*models.InboundEmail, error) {
	var email models.InboundEmail
	if err := r.db.Where("id = ?", id).First(&email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("inbound email not found")
		}
		return nil, fmt.Errorf("failed to find inbound email: %w", err)
	}
	return &email, nil
}

func (r *emailRepository) FindByMessageID(messageID string) (*models.InboundEmail, error) {
	var email models.InboundEmail
	err := r.db.Where("message_id = ?", messageID).First(&email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find inbound email: %w", err)
	}
	return &email, nil
}

func (r *emailRepository) FindUnrouted(limit int) ([]models.InboundEmail, error) {
	var emails []models.InboundEmail
	err := r.db.
		Where("outcome IS NULL OR outcome = ''").
		Order("received_at ASC").
		Limit(limit).
		Find(&emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unrouted emails: %w", err)
	}
	return emails, nil
}

func (r *emailRepository) SetClassification(id uuid.UUID, category models.EmailCategory, confidence float64) error {
	result := r.db.Model(&models.InboundEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"classification": category,
			"confidence":     confidence,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set classification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inbound email not found")
	}
	return nil
}

// SetOutcome records the routing outcome for an email that does not
// have one yet. It returns false when another routing attempt already
// won; the write is guarded so an outcome is only ever set once.
func (r *emailRepository) SetOutcome(id uuid.UUID, outcome models.RoutingOutcome, outcomeRef string) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.InboundEmail{}).
		Where("id = ? AND (outcome IS NULL OR outcome = '')", id).
		Updates(map[string]interface{}{
			"outcome":     outcome,
			"outcome_ref": outcomeRef,
			"routed_at":   now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to set routing outcome: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
