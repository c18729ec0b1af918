package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrflow/internal/models"
)

type TicketRepository interface {
	Create(ticket *models.Ticket) error
	FindByRelatedEmail(emailID uuid.UUID) (*models.Ticket, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ticket *models.Ticket) error {
	if err := r.db.Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// FindByRelatedEmail returns the ticket already opened for an email,
// if any. The router uses this to avoid duplicate tickets when a
// routing attempt is retried after a partial failure.
func (r *ticketRepository) FindByRelatedEmail(emailID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.Where("related_email_id = ?", emailID).First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return &ticket, nil
}
