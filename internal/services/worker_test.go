package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrflow/internal/models"
)

type recordingPipeline struct {
	mu     sync.Mutex
	events []uuid.UUID
	done   chan struct{}
}

func (p *recordingPipeline) ProcessRejection(ctx context.Context, candidateID, eventID uuid.UUID, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error) {
	p.mu.Lock()
	p.events = append(p.events, eventID)
	p.mu.Unlock()
	signal(p.done)
	return &models.FeedbackArtifact{ID: uuid.New(), RejectionEvent: eventID}, nil
}

type recordingRouter struct {
	mu     sync.Mutex
	routed []uuid.UUID
	done   chan struct{}
	// emails, when set, lets the recorder claim the outcome so the
	// poller stops re-enqueuing the message.
	emails *memEmailRepo
}

func (r *recordingRouter) Route(ctx context.Context, emailID uuid.UUID) (models.RoutingOutcome, error) {
	r.mu.Lock()
	r.routed = append(r.routed, emailID)
	r.mu.Unlock()
	if r.emails != nil {
		r.emails.SetOutcome(emailID, models.OutcomeForwardedToHR, "")
	}
	signal(r.done)
	return models.OutcomeForwardedToHR, nil
}

func signal(done chan struct{}) {
	if done == nil {
		return
	}
	select {
	case done <- struct{}{}:
	default:
	}
}

func TestWorkerDispatchesRejectionJobs(t *testing.T) {
	pipeline := &recordingPipeline{done: make(chan struct{}, 1)}
	router := &recordingRouter{}

	w := NewWorker(pipeline, router, 2, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	eventID := uuid.New()
	w.Enqueue(Job{
		Kind:        JobRejection,
		CandidateID: uuid.New(),
		EventID:     eventID,
		Stage:       models.StageHRInterview,
	})

	select {
	case <-pipeline.done:
	case <-time.After(2 * time.Second):
		t.Fatal("rejection job never processed")
	}

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if len(pipeline.events) != 1 || pipeline.events[0] != eventID {
		t.Errorf("processed events = %v, want [%s]", pipeline.events, eventID)
	}
}

func TestWorkerDispatchesEmailJobs(t *testing.T) {
	pipeline := &recordingPipeline{}
	router := &recordingRouter{done: make(chan struct{}, 1)}

	w := NewWorker(pipeline, router, 2, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	emailID := uuid.New()
	w.Enqueue(Job{Kind: JobInboundEmail, EmailID: emailID})

	select {
	case <-router.done:
	case <-time.After(2 * time.Second):
		t.Fatal("email job never processed")
	}

	router.mu.Lock()
	defer router.mu.Unlock()
	if len(router.routed) != 1 || router.routed[0] != emailID {
		t.Errorf("routed emails = %v, want [%s]", router.routed, emailID)
	}
}

// gatedPipeline blocks its first run until the gate is closed so a
// test can enqueue more work for the same candidate mid-flight.
type gatedPipeline struct {
	recordingPipeline
	gate    chan struct{}
	started chan struct{}
	first   sync.Once
}

func (p *gatedPipeline) ProcessRejection(ctx context.Context, candidateID, eventID uuid.UUID, stage models.CandidateStage, reason string) (*models.FeedbackArtifact, error) {
	blocked := false
	p.first.Do(func() { blocked = true })
	if blocked {
		signal(p.started)
		<-p.gate
	}
	return p.recordingPipeline.ProcessRejection(ctx, candidateID, eventID, stage, reason)
}

func TestWorkerKeepsSecondRejectionEventForBusyCandidate(t *testing.T) {
	pipeline := &gatedPipeline{
		recordingPipeline: recordingPipeline{done: make(chan struct{}, 2)},
		gate:              make(chan struct{}),
		started:           make(chan struct{}, 1),
	}

	w := NewWorker(pipeline, &recordingRouter{}, 2, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	candidateID := uuid.New()
	event1, event2 := uuid.New(), uuid.New()

	w.Enqueue(Job{Kind: JobRejection, CandidateID: candidateID, EventID: event1, Stage: models.StageHRInterview})
	select {
	case <-pipeline.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first event never started")
	}

	// Second event for the same candidate while the first is in flight.
	w.Enqueue(Job{Kind: JobRejection, CandidateID: candidateID, EventID: event2, Stage: models.StageHRInterview})
	close(pipeline.gate)

	for i := 0; i < 2; i++ {
		select {
		case <-pipeline.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 2 rejection events processed", i)
		}
	}

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	seen := make(map[uuid.UUID]bool, len(pipeline.events))
	for _, id := range pipeline.events {
		seen[id] = true
	}
	if !seen[event1] || !seen[event2] {
		t.Errorf("processed events = %v, want both %s and %s", pipeline.events, event1, event2)
	}
}

func TestMonitorEnqueuesUnroutedEmails(t *testing.T) {
	emails := newMemEmailRepo()
	pending := &models.InboundEmail{
		ID:         uuid.New(),
		MessageID:  "<pending@mail.example.com>",
		Sender:     "candidate@example.com",
		ReceivedAt: time.Now(),
	}
	if err := emails.Create(pending); err != nil {
		t.Fatalf("failed to seed email: %v", err)
	}

	router := &recordingRouter{done: make(chan struct{}, 1), emails: emails}
	w := NewWorker(&recordingPipeline{}, router, 1, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	m := NewEmailMonitor(emails, w, 10*time.Millisecond, zap.NewNop())
	m.Start(context.Background())
	defer m.Stop()

	select {
	case <-router.done:
	case <-time.After(2 * time.Second):
		t.Fatal("pending email never picked up by the monitor")
	}

	router.mu.Lock()
	defer router.mu.Unlock()
	if router.routed[0] != pending.ID {
		t.Errorf("routed = %s, want %s", router.routed[0], pending.ID)
	}
}
