package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hrflow/internal/repositories"
)

const pollBatchSize = 10

// EmailMonitor periodically looks for inbound emails without a routing
// outcome and enqueues one processing unit per message. Together with
// the router's idempotency guard this gives at-least-once processing
// with exactly-one outcome.
type EmailMonitor interface {
	Start(ctx context.Context)
	Stop()
}

type emailMonitor struct {
	emailRepo    repositories.EmailRepository
	worker       Worker
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	logger       *zap.Logger
}

func NewEmailMonitor(emailRepo repositories.EmailRepository, worker Worker, pollInterval time.Duration, logger *zap.Logger) EmailMonitor {
	return &emailMonitor{
		emailRepo:    emailRepo,
		worker:       worker,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}
}

// Start implements EmailMonitor.
func (m *emailMonitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.poll(ctx)
	m.logger.Info("email monitor started", zap.Duration("interval", m.pollInterval))
}

// Stop implements EmailMonitor.
func (m *emailMonitor) Stop() {
	close(m.stopChan)
	m.wg.Wait()
	m.logger.Info("email monitor stopped")
}

func (m *emailMonitor) poll(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := m.emailRepo.FindUnrouted(pollBatchSize)
			if err != nil {
				m.logger.Warn("failed to fetch unrouted emails", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				m.logger.Debug("found unrouted emails", zap.Int("count", len(pending)))
			}

			for _, email := range pending {
				m.worker.Enqueue(Job{
					Kind:    JobInboundEmail,
					EmailID: email.ID,
				})
			}
		}
	}
}
