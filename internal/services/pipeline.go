package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
)

// RejectionPipeline runs structure → validate → correct → feedback for
// one rejection event and records the artifact. Runs for the same
// candidate are serialized; one rejection event yields exactly one
// artifact no matter how often the surrounding request is retried.
type RejectionPipeline interface {
	ProcessRejection(ctx context.Context, candidateID, eventID uuid.UUID, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error)
}

type rejectionPipeline struct {
	candidateRepo repositories.CandidateRepository
	feedbackRepo  repositories.FeedbackRepository
	outboundRepo  repositories.OutboundRepository
	structurer    CVStructurer
	validator     StructureValidator
	corrector     StructureCorrector
	generator     FeedbackGenerator
	logger        *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*candidateLock
}

// candidateLock serializes pipeline runs for one candidate. The
// refcount lets the map entry be removed once the last waiter is done,
// keeping the map bounded by in-flight work rather than by history.
type candidateLock struct {
	mu   sync.Mutex
	refs int
}

func NewRejectionPipeline(
	candidateRepo repositories.CandidateRepository,
	feedbackRepo repositories.FeedbackRepository,
	outboundRepo repositories.OutboundRepository,
	structurer CVStructurer,
	validator StructureValidator,
	corrector StructureCorrector,
	generator FeedbackGenerator,
	logger *zap.Logger,
) RejectionPipeline {
	return &rejectionPipeline{
		candidateRepo: candidateRepo,
		feedbackRepo:  feedbackRepo,
		outboundRepo:  outboundRepo,
		structurer:    structurer,
		validator:     validator,
		corrector:     corrector,
		generator:     generator,
		logger:        logger,
		locks:         make(map[uuid.UUID]*candidateLock),
	}
}

// ProcessRejection implements RejectionPipeline.
func (p *rejectionPipeline) ProcessRejection(ctx context.Context, candidateID, eventID uuid.UUID, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error) {
	lock := p.lockCandidate(candidateID)
	defer p.unlockCandidate(candidateID, lock)

	// Exactly-once: a retried request for a known event returns the
	// recorded artifact untouched.
	if existing, err := p.feedbackRepo.FindByEventID(eventID); err != nil {
		return nil, err
	} else if existing != nil {
		p.logger.Info("rejection event already processed",
			zap.String("event_id", eventID.String()),
			zap.String("artifact_id", existing.ID.String()))
		return existing, nil
	}

	candidate, err := p.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("processing rejection event",
		zap.String("candidate_id", candidateID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("stage", string(stage)))

	cv, err := p.structurer.Structure(ctx, candidate.CVText)
	if err != nil {
		return nil, err
	}

	defects := p.validator.Validate(cv)
	cv, attempts := p.corrector.Correct(ctx, candidate.CVText, cv, defects)
	if cv.Validity == models.ValidityUnresolvedDefects {
		p.logger.Warn("proceeding with unresolved defects",
			zap.String("candidate_id", candidateID.String()),
			zap.Int("attempts", attempts),
			zap.Int("open_defects", len(cv.Defects)))
	}

	artifact, err := p.generator.Generate(ctx, candidateID, eventID, cv, stage, reason)
	if err != nil {
		return nil, err
	}

	if err := p.feedbackRepo.Create(artifact); err != nil {
		// A concurrent retry may have won the unique-event insert.
		if existing, findErr := p.feedbackRepo.FindByEventID(eventID); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	// Hand the send to the mail-transport collaborator by recording it.
	if candidate.Email != "" {
		outbound := &models.OutboundEmail{
			ID:      uuid.New(),
			To:      candidate.Email,
			Subject: "Your application with us",
			Body:    artifact.Body + "\n\n" + artifact.ConsentNotice,
			Kind:    models.OutboundFeedback,
		}
		if err := p.outboundRepo.Create(outbound); err != nil {
			p.logger.Error("failed to record feedback email",
				zap.String("artifact_id", artifact.ID.String()),
				zap.Error(err))
		}
	}

	if err := p.candidateRepo.UpdateStage(candidateID, models.StageRejected); err != nil {
		p.logger.Warn("failed to update candidate stage",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err))
	}

	return artifact, nil
}

func (p *rejectionPipeline) lockCandidate(id uuid.UUID) *candidateLock {
	p.mu.Lock()
	lock, ok := p.locks[id]
	if !ok {
		lock = &candidateLock{}
		p.locks[id] = lock
	}
	lock.refs++
	p.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (p *rejectionPipeline) unlockCandidate(id uuid.UUID, lock *candidateLock) {
	lock.mu.Unlock()

	p.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(p.locks, id)
	}
	p.mu.Unlock()
}
