package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hrflow/internal/models"
	"hrflow/internal/repositories"
)

var (
	errNotFound  = errors.New("record not found")
	errDuplicate = errors.New("duplicate key value violates unique constraint")
)

// stubGemini routes every completion through textFn, so tests can
// script model behavior per prompt.
type stubGemini struct {
	embedFn func(text string) ([]float32, error)
	textFn  func(prompt string) (string, error)
	calls   int
}

func (s *stubGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.embedFn != nil {
		return s.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	s.calls++
	return s.textFn(prompt)
}

func (s *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	s.calls++
	return s.textFn(prompt)
}

type stubQdrant struct {
	results []SearchResult
	err     error
}

func (s *stubQdrant) InitCollection() error { return nil }

func (s *stubQdrant) UpsertDocument(ctx context.Context, docID, docType, text string, embedding []float32) error {
	return nil
}

func (s *stubQdrant) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubRetriever struct {
	passages []models.RetrievedPassage
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]models.RetrievedPassage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.passages, nil
}

type stubClassifier struct {
	result Classification
}

func (s *stubClassifier) Classify(ctx context.Context, email *models.InboundEmail) Classification {
	return s.result
}

type stubResponder struct {
	answer *Answer
	err    error
}

func (s *stubResponder) Compose(ctx context.Context, email *models.InboundEmail) (*Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type stubStructurer struct {
	cv  *models.StructuredCV
	err error
}

func (s *stubStructurer) Structure(ctx context.Context, cvText string) (*models.StructuredCV, error) {
	if s.err != nil {
		return nil, s.err
	}
	clone := *s.cv
	return &clone, nil
}

type stubGenerator struct {
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, candidateID, eventID uuid.UUID, cv *models.StructuredCV, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.FeedbackArtifact{
		ID:             uuid.New(),
		CandidateID:    candidateID,
		RejectionEvent: eventID,
		Stage:          stage,
		Reason:         reason,
		Body:           "feedback body",
		ConsentNotice:  "consent notice",
		Validity:       cv.Validity,
		OpenDefects:    cv.Defects,
	}, nil
}

// In-memory repositories mirroring the gorm-backed contracts,
// including the guarded outcome claim and the unique rejection event.

type memCandidateRepo struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*models.Candidate
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{candidates: make(map[uuid.UUID]*models.Candidate)}
}

func (r *memCandidateRepo) Create(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = c
	return nil
}

func (r *memCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCandidateRepo) FindLatestByEmail(email string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Candidate
	for _, c := range r.candidates {
		if !strings.EqualFold(c.Email, email) {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (r *memCandidateRepo) UpdateStage(id uuid.UUID, stage models.CandidateStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return errNotFound
	}
	c.Stage = stage
	return nil
}

type memEmailRepo struct {
	mu     sync.Mutex
	emails map[uuid.UUID]*models.InboundEmail
}

func newMemEmailRepo() *memEmailRepo {
	return &memEmailRepo{emails: make(map[uuid.UUID]*models.InboundEmail)}
}

func (r *memEmailRepo) Create(e *models.InboundEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.emails {
		if existing.MessageID == e.MessageID {
			return errDuplicate
		}
	}
	r.emails[e.ID] = e
	return nil
}

func (r *memEmailRepo) FindByID(id uuid.UUID) (*models.InboundEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *memEmailRepo) FindByMessageID(messageID string) (*models.InboundEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.emails {
		if e.MessageID == messageID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memEmailRepo) FindUnrouted(limit int) ([]models.InboundEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.InboundEmail
	for _, e := range r.emails {
		if e.Outcome == "" && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEmailRepo) SetClassification(id uuid.UUID, category models.EmailCategory, confidence float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[id]
	if !ok {
		return errNotFound
	}
	e.Classification = category
	e.Confidence = confidence
	return nil
}

func (r *memEmailRepo) SetOutcome(id uuid.UUID, outcome models.RoutingOutcome, outcomeRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[id]
	if !ok {
		return false, errNotFound
	}
	if e.Outcome != "" {
		return false, nil
	}
	e.Outcome = outcome
	e.OutcomeRef = outcomeRef
	return true, nil
}

type memFeedbackRepo struct {
	mu        sync.Mutex
	artifacts map[uuid.UUID]*models.FeedbackArtifact
}

func newMemFeedbackRepo() *memFeedbackRepo {
	return &memFeedbackRepo{artifacts: make(map[uuid.UUID]*models.FeedbackArtifact)}
}

func (r *memFeedbackRepo) Create(a *models.FeedbackArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.artifacts {
		if existing.RejectionEvent == a.RejectionEvent {
			return errDuplicate
		}
	}
	r.artifacts[a.ID] = a
	return nil
}

func (r *memFeedbackRepo) FindByID(id uuid.UUID) (*models.FeedbackArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artifacts[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memFeedbackRepo) FindByEventID(eventID uuid.UUID) (*models.FeedbackArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.artifacts {
		if a.RejectionEvent == eventID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memFeedbackRepo) FindByCandidate(candidateID uuid.UUID) ([]models.FeedbackArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FeedbackArtifact
	for _, a := range r.artifacts {
		if a.CandidateID == candidateID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type memTicketRepo struct {
	mu      sync.Mutex
	tickets []*models.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{}
}

func (r *memTicketRepo) Create(t *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = append(r.tickets, t)
	return nil
}

func (r *memTicketRepo) FindByRelatedEmail(emailID uuid.UUID) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.RelatedEmailID != nil && *t.RelatedEmailID == emailID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

type memOutboundRepo struct {
	mu     sync.Mutex
	emails []*models.OutboundEmail
}

func newMemOutboundRepo() *memOutboundRepo {
	return &memOutboundRepo{}
}

func (r *memOutboundRepo) Create(e *models.OutboundEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, e)
	return nil
}

func (r *memOutboundRepo) FindByRelatedEmail(emailID uuid.UUID) ([]models.OutboundEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OutboundEmail
	for _, e := range r.emails {
		if e.RelatedEmailID != nil && *e.RelatedEmailID == emailID {
			out = append(out, *e)
		}
	}
	return out, nil
}

var (
	_ GeminiService                    = (*stubGemini)(nil)
	_ QdrantService                    = (*stubQdrant)(nil)
	_ KnowledgeRetriever               = (*stubRetriever)(nil)
	_ EmailClassifier                  = (*stubClassifier)(nil)
	_ QueryResponder                   = (*stubResponder)(nil)
	_ CVStructurer                     = (*stubStructurer)(nil)
	_ FeedbackGenerator                = (*stubGenerator)(nil)
	_ repositories.CandidateRepository = (*memCandidateRepo)(nil)
	_ repositories.EmailRepository     = (*memEmailRepo)(nil)
	_ repositories.FeedbackRepository  = (*memFeedbackRepo)(nil)
	_ repositories.TicketRepository    = (*memTicketRepo)(nil)
	_ repositories.OutboundRepository  = (*memOutboundRepo)(nil)
)
