package discoveryjob

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// Repository handles batch discovery job records
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new discovery job repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const jobColumns = "id, tenant_id, status, contacts_total, contacts_scanned, contacts_failed, candidates_found, started_by, started_at, completed_at, failure_reason"

// Create persists a new job in the running state
func (r *Repository) Create(ctx context.Context, job *models.DiscoveryJob) (*models.DiscoveryJob, error) {
	ctx, span := tracing.StartSpan(ctx, "discoveryjob.Repository.Create")
	defer span.End()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Status = models.JobStatusRunning
	job.StartedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("discovery_jobs")
	sb.Cols("id", "tenant_id", "status", "contacts_total", "contacts_scanned", "contacts_failed", "candidates_found", "started_by", "started_at")
	sb.Values(job.ID, job.TenantID, job.Status, job.ContactsTotal, job.ContactsScanned, job.ContactsFailed, job.CandidatesFound, job.StartedBy, job.StartedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"job_id": job.ID}).Error("Failed to create discovery job")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create discovery job")
	}

	return job, nil
}

// Get retrieves a job by ID within a tenant
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.DiscoveryJob, error) {
	ctx, span := tracing.StartSpan(ctx, "discoveryjob.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(jobColumns)
	sb.From("discovery_jobs")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var job models.DiscoveryJob
	if err := r.db.GetContext(ctx, &job, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("discovery job %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get discovery job")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get discovery job")
	}

	return &job, nil
}

// UpdateProgress records per-contact outcomes as the batch advances
func (r *Repository) UpdateProgress(ctx context.Context, tenantID string, id string, scanned, failed, candidatesFound int) error {
	ctx, span := tracing.StartSpan(ctx, "discoveryjob.Repository.UpdateProgress")
	defer span.End()

	query := `
		UPDATE discovery_jobs
		SET contacts_scanned = $1, contacts_failed = $2, candidates_found = $3
		WHERE id = $4 AND tenant_id = $5
	`

	if _, err := r.db.ExecContext(ctx, query, scanned, failed, candidatesFound, id, tenantID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update discovery job progress")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update discovery job")
	}

	return nil
}

// Finish transitions a job to a terminal status
func (r *Repository) Finish(ctx context.Context, tenantID string, id string, status models.JobStatus, failureReason *string) error {
	ctx, span := tracing.StartSpan(ctx, "discoveryjob.Repository.Finish")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("discovery_jobs")
	sb.Set(
		sb.Assign("status", status),
		sb.Assign("completed_at", now),
		sb.Assign("failure_reason", failureReason),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to finish discovery job")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update discovery job")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("discovery job %s not found", id))
	}

	return nil
}
