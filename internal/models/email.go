package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailCategory is the closed classification label set. Anything the
// classifier cannot place with certainty resolves to
// CategoryUnclassifiable rather than being dropped.
type EmailCategory string

const (
	CategoryCandidateQuestion EmailCategory = "candidate_question"
	CategoryConsentOrIOD      EmailCategory = "consent_or_iod_request"
	CategoryGeneralInquiry    EmailCategory = "general_inquiry"
	CategoryUnclassifiable    EmailCategory = "other_unclassifiable"
)

// ValidCategory reports whether c belongs to the closed label set.
func ValidCategory(c EmailCategory) bool {
	switch c {
	case CategoryCandidateQuestion, CategoryConsentOrIOD,
		CategoryGeneralInquiry, CategoryUnclassifiable:
		return true
	}
	return false
}

type RoutingOutcome string

const (
	OutcomeAutoReplied   RoutingOutcome = "auto_replied"
	OutcomeForwardedToHR RoutingOutcome = "forwarded_to_hr"
	OutcomeEscalatedIOD  RoutingOutcome = "escalated_iod"
	OutcomeManualReview  RoutingOutcome = "unclassified_manual_review"
)

// InboundEmail is one received message. Classification and outcome
// start empty and are each set exactly once.
type InboundEmail struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MessageID      string         `gorm:"type:text;uniqueIndex" json:"message_id"`
	Sender         string         `gorm:"type:text;not null" json:"sender"`
	Subject        string         `gorm:"type:text" json:"subject"`
	Body           string         `gorm:"type:text" json:"body"`
	ReceivedAt     time.Time      `gorm:"not null" json:"received_at"`
	Classification EmailCategory  `gorm:"type:text" json:"classification,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	Outcome        RoutingOutcome `gorm:"type:text" json:"outcome,omitempty"`
	OutcomeRef     string         `gorm:"type:text" json:"outcome_ref,omitempty"`
	RoutedAt       *time.Time     `json:"routed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InboundEmail) TableName() string {
	return "inbound_emails"
}

type OutboundKind string

const (
	OutboundReply       OutboundKind = "reply"
	OutboundForward     OutboundKind = "forward"
	OutboundAcknowledge OutboundKind = "acknowledgment"
	OutboundFeedback    OutboundKind = "feedback"
)

// OutboundEmail records a message handed to the mail-transport
// collaborator. The transport itself lives outside this service.
type OutboundEmail struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	To             string       `gorm:"type:text;not null" json:"to"`
	ReplyTo        string       `gorm:"type:text" json:"reply_to,omitempty"`
	Subject        string       `gorm:"type:text" json:"subject"`
	Body           string       `gorm:"type:text" json:"body"`
	Kind           OutboundKind `gorm:"type:text;not null" json:"kind"`
	RelatedEmailID *uuid.UUID   `gorm:"type:uuid;index" json:"related_email_id,omitempty"`
	CreatedAt      time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OutboundEmail) TableName() string {
	return "outbound_emails"
}

type TicketDepartment string

type TicketPriority string

const (
	DepartmentIOD TicketDepartment = "iod"
	DepartmentHR  TicketDepartment = "hr"

	PriorityHigh   TicketPriority = "high"
	PriorityMedium TicketPriority = "medium"
	PriorityLow    TicketPriority = "low"
)

// Ticket is a compliance or HR work item created by the router.
type Ticket struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Department         TicketDepartment `gorm:"type:text;not null" json:"department"`
	Priority           TicketPriority   `gorm:"type:text;not null" json:"priority"`
	Description        string           `gorm:"type:text" json:"description"`
	Deadline           time.Time        `json:"deadline"`
	RelatedCandidateID *uuid.UUID       `gorm:"type:uuid" json:"related_candidate_id,omitempty"`
	RelatedEmailID     *uuid.UUID       `gorm:"type:uuid;index" json:"related_email_id,omitempty"`
	CreatedAt          time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}
