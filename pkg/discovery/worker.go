package discovery

import (
	"context"
	"sync"

	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// BatchDiscover runs discovery for every active contact in the tenant. The
// caller gets an immediate acknowledgment with a job id; progress and the
// terminal status are durable on the job record. Per-contact failures are
// counted and logged without aborting the batch.
func (s *Service) BatchDiscover(ctx context.Context, scope models.Scope) (*models.BatchDiscoverResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.BatchDiscover")
	defer span.End()

	contacts, err := s.contacts.ListByTenant(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.Create(ctx, &models.DiscoveryJob{
		TenantID:      scope.TenantID,
		ContactsTotal: len(contacts),
		StartedBy:     scope.ActorID,
	})
	if err != nil {
		return nil, err
	}

	// Detached from the request context so the batch outlives the HTTP call.
	go s.runBatch(context.Background(), scope, job.ID, contacts)

	return &models.BatchDiscoverResponse{
		JobID:  job.ID,
		Status: models.JobStatusRunning,
	}, nil
}

type batchProgress struct {
	mu              sync.Mutex
	scanned         int
	failed          int
	candidatesFound int
}

func (s *Service) runBatch(ctx context.Context, scope models.Scope, jobID string, contacts []models.Contact) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.runBatch")
	defer span.End()

	progress := &batchProgress{}
	indexCh := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.config.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				contactID := contacts[idx].ID
				result, err := s.DiscoverForContact(ctx, scope, contactID)

				progress.mu.Lock()
				progress.scanned++
				if err != nil {
					progress.failed++
				} else {
					progress.candidatesFound += result.Persisted
				}
				scanned, failed, found := progress.scanned, progress.failed, progress.candidatesFound
				progress.mu.Unlock()

				if err != nil {
					s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
						"job_id":     jobID,
						"contact_id": contactID,
					}).Error("Batch discovery failed for contact")
				}

				if scanned%10 == 0 {
					if progressErr := s.jobs.UpdateProgress(ctx, scope.TenantID, jobID, scanned, failed, found); progressErr != nil {
						s.logger.WithContext(ctx).WithError(progressErr).Error("Failed to record batch discovery progress")
					}
				}
			}
		}()
	}

	for idx := range contacts {
		indexCh <- idx
	}
	close(indexCh)
	wg.Wait()

	if err := s.jobs.UpdateProgress(ctx, scope.TenantID, jobID, progress.scanned, progress.failed, progress.candidatesFound); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to record final batch discovery progress")
	}

	// Partial failures still complete the job; the failure count is on the
	// record. Only a batch where no contact could be scanned is marked failed.
	status := models.JobStatusCompleted
	var failureReason *string
	if progress.scanned > 0 && progress.failed == progress.scanned {
		status = models.JobStatusFailed
		reason := "discovery failed for every contact in the batch"
		failureReason = &reason
	}
	if err := s.jobs.Finish(ctx, scope.TenantID, jobID, status, failureReason); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to mark batch discovery job finished")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"job_id":           jobID,
		"status":           status,
		"contacts_scanned": progress.scanned,
		"contacts_failed":  progress.failed,
		"candidates_found": progress.candidatesFound,
	}).Info("Batch discovery finished")

	if s.emitter != nil {
		job, err := s.jobs.Get(ctx, scope.TenantID, jobID)
		if err == nil {
			if emitErr := s.emitter.EmitBatchCompleted(ctx, scope, job); emitErr != nil {
				s.logger.WithContext(ctx).WithError(emitErr).Warn("Failed to emit batch completed event")
			}
		}
	}
}
