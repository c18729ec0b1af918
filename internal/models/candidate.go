package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStage string

const (
	StageInitialScreening    CandidateStage = "initial_screening"
	StageHRInterview         CandidateStage = "hr_interview"
	StageTechnicalAssessment CandidateStage = "technical_assessment"
	StageFinalInterview      CandidateStage = "final_interview"
	StageOffer               CandidateStage = "offer"
	StageRejected            CandidateStage = "rejected"
)

// ValidStage reports whether s is one of the known pipeline stages.
func ValidStage(s CandidateStage) bool {
	switch s {
	case StageInitialScreening, StageHRInterview, StageTechnicalAssessment,
		StageFinalInterview, StageOffer, StageRejected:
		return true
	}
	return false
}

// Candidate is the persisted candidate record. The agent pipeline only
// reads it; stage changes and edits belong to the candidate-management
// side.
type Candidate struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName   string         `gorm:"type:text" json:"full_name"`
	Email      string         `gorm:"type:text;index" json:"email"`
	Phone      string         `gorm:"type:text" json:"phone"`
	Stage      CandidateStage `gorm:"type:text;not null;default:'initial_screening'" json:"stage"`
	CVFilePath string         `gorm:"type:text" json:"cv_file_path"`
	CVText     string         `gorm:"type:text" json:"-"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
