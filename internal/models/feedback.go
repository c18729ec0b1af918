package models

import (
	"time"

	"github.com/google/uuid"
)

// RetrievedPassage is one knowledge-base hit used to ground generated
// text. Produced per query; only persisted as part of an artifact's
// grounding record.
type RetrievedPassage struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Score    float32 `json:"score"`
}

// FeedbackArtifact is the immutable result of one rejection event.
// Re-rejection produces a new artifact with a newer timestamp; rows
// are never updated.
type FeedbackArtifact struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"candidate_id"`
	RejectionEvent  uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"rejection_event"`
	Stage           CandidateStage     `gorm:"type:text;not null" json:"stage"`
	Reason          string             `gorm:"type:text" json:"reason,omitempty"`
	Body            string             `gorm:"type:text;not null" json:"body"`
	ConsentNotice   string             `gorm:"type:text;not null" json:"consent_notice"`
	Validity        Validity           `gorm:"type:text;not null" json:"validity"`
	Grounding       []RetrievedPassage `gorm:"serializer:json" json:"grounding,omitempty"`
	OpenDefects     []ValidationDefect `gorm:"serializer:json" json:"open_defects,omitempty"`
	GeneratedAt     time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"generated_at"`
}

func (FeedbackArtifact) TableName() string {
	return "feedback_artifacts"
}
