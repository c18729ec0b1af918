package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrflow/internal/models"
)

type JobKind string

const (
	JobRejection    JobKind = "rejection"
	JobInboundEmail JobKind = "inbound_email"
)

// Job is one independent unit of work: either a rejection event for
// the agent pipeline or one inbound email for the router.
type Job struct {
	Kind        JobKind
	CandidateID uuid.UUID
	EventID     uuid.UUID
	Stage       models.CandidateStage
	Reason      string
	EmailID     uuid.UUID
}

func (j Job) key() string {
	if j.Kind == JobRejection {
		return string(j.Kind) + ":" + j.CandidateID.String()
	}
	return string(j.Kind) + ":" + j.EmailID.String()
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job Job)
}

type worker struct {
	pipeline    RejectionPipeline
	router      EmailRouter
	jobQueue    chan Job
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	logger      *zap.Logger

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewWorker(pipeline RejectionPipeline, router EmailRouter, concurrency int, logger *zap.Logger) Worker {
	return &worker{
		pipeline:    pipeline,
		router:      router,
		jobQueue:    make(chan Job, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
		inflight:    make(map[string]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

// Enqueue implements Worker.
func (w *worker) Enqueue(job Job) {
	select {
	case w.jobQueue <- job:
		w.logger.Debug("job enqueued",
			zap.String("kind", string(job.Kind)),
			zap.String("key", job.key()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, dropping job",
			zap.String("kind", string(job.Kind)),
			zap.String("key", job.key()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case job := <-w.jobQueue:
			// Rejection events are never dropped: the pipeline holds a
			// per-candidate lock, so a second event for a busy candidate
			// waits its turn and still produces its artifact. Email jobs
			// are gated here instead; a skipped email stays unrouted and
			// the poller re-enqueues it.
			if job.Kind == JobInboundEmail {
				if !w.begin(job.key()) {
					w.logger.Debug("email already in flight, skipping",
						zap.String("key", job.key()))
					continue
				}
				w.process(ctx, workerID, job)
				w.end(job.key())
				continue
			}
			w.process(ctx, workerID, job)
		}
	}
}

func (w *worker) process(ctx context.Context, workerID int, job Job) {
	log := w.logger.With(
		zap.Int("worker", workerID),
		zap.String("kind", string(job.Kind)))

	switch job.Kind {
	case JobRejection:
		if _, err := w.pipeline.ProcessRejection(ctx, job.CandidateID, job.EventID, job.Stage, job.Reason); err != nil {
			log.Error("rejection pipeline failed",
				zap.String("candidate_id", job.CandidateID.String()),
				zap.String("event_id", job.EventID.String()),
				zap.Error(err))
			return
		}
		log.Info("rejection pipeline completed",
			zap.String("candidate_id", job.CandidateID.String()))
	case JobInboundEmail:
		outcome, err := w.router.Route(ctx, job.EmailID)
		if err != nil {
			log.Error("email routing failed",
				zap.String("email_id", job.EmailID.String()),
				zap.Error(err))
			return
		}
		log.Info("email routed",
			zap.String("email_id", job.EmailID.String()),
			zap.String("outcome", string(outcome)))
	}
}

func (w *worker) begin(key string) bool {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	if _, busy := w.inflight[key]; busy {
		return false
	}
	w.inflight[key] = struct{}{}
	return true
}

func (w *worker) end(key string) {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	delete(w.inflight, key)
}
