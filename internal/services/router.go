package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrflow/internal/config"
	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
	"hrflow/internal/repositories"
)

// EmailRouter dispatches one classified email to exactly one handling
// path. The outcome is claimed through a guarded write before any
// side effect that reaches the sender is recorded, so a retry after a
// partial failure can never answer the same message twice.
type EmailRouter interface {
	Route(ctx context.Context, emailID uuid.UUID) (models.RoutingOutcome, error)
}

type emailRouter struct {
	emailRepo     repositories.EmailRepository
	ticketRepo    repositories.TicketRepository
	outboundRepo  repositories.OutboundRepository
	candidateRepo repositories.CandidateRepository
	classifier    EmailClassifier
	responder     QueryResponder
	hrAddress     string
	iodAddress    string
	minConfidence float64
	logger        *zap.Logger
}

func NewEmailRouter(
	emailRepo repositories.EmailRepository,
	ticketRepo repositories.TicketRepository,
	outboundRepo repositories.OutboundRepository,
	candidateRepo repositories.CandidateRepository,
	classifier EmailClassifier,
	responder QueryResponder,
	cfg config.MailConfig,
	logger *zap.Logger,
) EmailRouter {
	return &emailRouter{
		emailRepo:     emailRepo,
		ticketRepo:    ticketRepo,
		outboundRepo:  outboundRepo,
		candidateRepo: candidateRepo,
		classifier:    classifier,
		responder:     responder,
		hrAddress:     cfg.HRAddress,
		iodAddress:    cfg.IODAddress,
		minConfidence: cfg.MinReplyConfidence,
		logger:        logger,
	}
}

// Route implements EmailRouter.
func (r *emailRouter) Route(ctx context.Context, emailID uuid.UUID) (models.RoutingOutcome, error) {
	email, err := r.emailRepo.FindByID(emailID)
	if err != nil {
		return "", err
	}

	// Idempotency guard: an email with an outcome is done, full stop.
	if email.Outcome != "" {
		r.logger.Debug("email already routed",
			zap.String("email_id", emailID.String()),
			zap.String("outcome", string(email.Outcome)))
		return email.Outcome, nil
	}

	// received → classified. A reclassification on retry is avoided by
	// reusing the stored label.
	classification := Classification{
		Category:   email.Classification,
		Confidence: email.Confidence,
	}
	if classification.Category == "" {
		classification = r.classifier.Classify(ctx, email)
		if err := r.emailRepo.SetClassification(emailID, classification.Category, classification.Confidence); err != nil {
			return "", err
		}
		email.Classification = classification.Category
		email.Confidence = classification.Confidence
	}

	r.logger.Info("routing email",
		zap.String("email_id", emailID.String()),
		zap.String("sender", email.Sender),
		zap.String("category", string(classification.Category)),
		zap.Float64("confidence", classification.Confidence))

	// classified → routed.
	switch classification.Category {
	case models.CategoryCandidateQuestion:
		return r.routeQuestion(ctx, email, classification)
	case models.CategoryConsentOrIOD:
		return r.escalateIOD(ctx, email)
	case models.CategoryGeneralInquiry:
		return r.forwardToHR(email)
	default:
		return r.claim(email, models.OutcomeManualReview, "", nil)
	}
}

// routeQuestion auto-replies to candidate questions when the
// classification is confident and the answer is grounded in retrieved
// knowledge; otherwise the question goes to a human.
func (r *emailRouter) routeQuestion(ctx context.Context, email *models.InboundEmail, classification Classification) (models.RoutingOutcome, error) {
	if classification.Confidence < r.minConfidence {
		r.logger.Info("classification confidence below auto-reply threshold",
			zap.String("email_id", email.ID.String()),
			zap.Float64("confidence", classification.Confidence),
			zap.Float64("threshold", r.minConfidence))
		return r.forwardToHR(email)
	}

	answer, err := r.responder.Compose(ctx, email)
	if err != nil {
		r.logger.Warn("answer composition failed, forwarding to hr",
			zap.String("email_id", email.ID.String()),
			zap.Error(err))
		return r.forwardToHR(email)
	}
	if !answer.Grounded {
		return r.forwardToHR(email)
	}

	reply := &models.OutboundEmail{
		ID:             uuid.New(),
		To:             email.Sender,
		Subject:        "Re: " + email.Subject,
		Body:           answer.Body,
		Kind:           models.OutboundReply,
		RelatedEmailID: &email.ID,
	}
	return r.claim(email, models.OutcomeAutoReplied, reply.ID.String(), []*models.OutboundEmail{reply})
}

// escalateIOD opens a compliance ticket and acknowledges the sender.
// Consent and data-protection mail is never auto-answered.
func (r *emailRouter) escalateIOD(ctx context.Context, email *models.InboundEmail) (models.RoutingOutcome, error) {
	_ = ctx

	ticket, err := r.ticketRepo.FindByRelatedEmail(email.ID)
	if err != nil {
		return "", err
	}
	if ticket == nil {
		ticket = &models.Ticket{
			ID:         uuid.New(),
			Department: models.DepartmentIOD,
			Priority:   models.PriorityHigh,
			Description: fmt.Sprintf("Email from: %s\nSubject: %s\n\n%s",
				email.Sender, email.Subject, email.Body),
			Deadline:       time.Now().AddDate(0, 0, 7),
			RelatedEmailID: &email.ID,
		}

		if candidate, err := r.candidateRepo.FindLatestByEmail(email.Sender); err != nil {
			r.logger.Warn("candidate lookup failed",
				zap.String("sender", email.Sender),
				zap.Error(err))
		} else if candidate != nil {
			ticket.RelatedCandidateID = &candidate.ID
		}

		if err := r.ticketRepo.Create(ticket); err != nil {
			return "", err
		}
		r.logger.Info("compliance ticket created",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("email_id", email.ID.String()))
	}

	forward := &models.OutboundEmail{
		ID:             uuid.New(),
		To:             r.iodAddress,
		ReplyTo:        email.Sender,
		Subject:        "[IOD] " + email.Subject,
		Body:           forwardBody(email),
		Kind:           models.OutboundForward,
		RelatedEmailID: &email.ID,
	}
	ack := &models.OutboundEmail{
		ID:             uuid.New(),
		To:             email.Sender,
		Subject:        "Re: " + email.Subject,
		Body:           iodAcknowledgment,
		Kind:           models.OutboundAcknowledge,
		RelatedEmailID: &email.ID,
	}

	return r.claim(email, models.OutcomeEscalatedIOD, ticket.ID.String(), []*models.OutboundEmail{forward, ack})
}

func (r *emailRouter) forwardToHR(email *models.InboundEmail) (models.RoutingOutcome, error) {
	forward := &models.OutboundEmail{
		ID:             uuid.New(),
		To:             r.hrAddress,
		ReplyTo:        email.Sender,
		Subject:        "[HR] " + email.Subject,
		Body:           forwardBody(email),
		Kind:           models.OutboundForward,
		RelatedEmailID: &email.ID,
	}
	return r.claim(email, models.OutcomeForwardedToHR, forward.ID.String(), []*models.OutboundEmail{forward})
}

// claim sets the outcome through the guarded repository write, then
// records outbound mail only when this attempt won the claim. A lost
// claim means a concurrent or earlier attempt finished the job.
func (r *emailRouter) claim(email *models.InboundEmail, outcome models.RoutingOutcome, ref string, outbound []*models.OutboundEmail) (models.RoutingOutcome, error) {
	won, err := r.emailRepo.SetOutcome(email.ID, outcome, ref)
	if err != nil {
		return "", err
	}
	if !won {
		current, err := r.emailRepo.FindByID(email.ID)
		if err != nil {
			return "", err
		}
		r.logger.Info("routing already resolved elsewhere",
			zap.String("email_id", email.ID.String()),
			zap.String("code", apperrors.ErrCodeAlreadyRouted),
			zap.String("outcome", string(current.Outcome)))
		return current.Outcome, nil
	}

	for _, msg := range outbound {
		if err := r.outboundRepo.Create(msg); err != nil {
			r.logger.Error("failed to record outbound email",
				zap.String("email_id", email.ID.String()),
				zap.String("kind", string(msg.Kind)),
				zap.Error(err))
		}
	}

	r.logger.Info("email routed",
		zap.String("email_id", email.ID.String()),
		zap.String("outcome", string(outcome)),
		zap.String("outcome_ref", ref))

	return outcome, nil
}

func forwardBody(email *models.InboundEmail) string {
	body := email.Body
	if body == "" {
		body = "(original message had no body)"
	}
	return fmt.Sprintf("Email received from: %s\nDate: %s\nSubject: %s\n\n---\n%s",
		email.Sender, email.ReceivedAt.Format(time.RFC1123), email.Subject, body)
}

const iodAcknowledgment = `Thank you for contacting us.

Your message has been forwarded to our data protection officer for review. You will receive a reply as soon as possible.

Kind regards,
HR Team`
