package candidate

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

// Repository handles potential relationship persistence. Candidates are
// unique per (tenant_id, contact_id, related_contact_id); discovery reruns
// refine pending rows in place and never touch terminal ones.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new candidate repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const candidateColumns = "id, tenant_id, contact_id, related_contact_id, relationship_type, confidence, evidence, status, discovered_by, reviewed_by, reviewed_at, created_at, updated_at"

// UpsertBatch inserts or refreshes candidates. Rows already approved or
// rejected are left untouched so a terminal review is never reopened.
func (r *Repository) UpsertBatch(ctx context.Context, candidates []*models.PotentialRelationship) error {
	ctx, span := tracing.StartSpan(ctx, "candidate.Repository.UpsertBatch")
	defer span.End()

	if len(candidates) == 0 {
		return nil
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("potential_relationships")
	sb.Cols("id", "tenant_id", "contact_id", "related_contact_id", "relationship_type", "confidence", "evidence", "status", "discovered_by", "created_at", "updated_at")

	for _, c := range candidates {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		if c.Status == "" {
			c.Status = models.CandidateStatusPending
		}
		sb.Values(c.ID, c.TenantID, c.ContactID, c.RelatedContactID, c.RelationshipType, c.Confidence, c.Evidence, c.Status, c.DiscoveredBy, c.CreatedAt, c.UpdatedAt)
	}

	query, args := sb.Build()
	query += ` ON CONFLICT (tenant_id, contact_id, related_contact_id) DO UPDATE
		SET confidence = EXCLUDED.confidence,
			evidence = EXCLUDED.evidence,
			relationship_type = EXCLUDED.relationship_type,
			updated_at = EXCLUDED.updated_at
		WHERE potential_relationships.status = 'pending'`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert candidates")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert candidates")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(candidates)}).Debug("Upserted candidates")
	return nil
}

// Get retrieves a candidate by ID within a tenant
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.PotentialRelationship, error) {
	ctx, span := tracing.StartSpan(ctx, "candidate.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns)
	sb.From("potential_relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var candidate models.PotentialRelationship
	if err := r.db.GetContext(ctx, &candidate, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("candidate %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get candidate")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get candidate")
	}

	return &candidate, nil
}

// List retrieves candidates filtered by status and minimum confidence
func (r *Repository) List(ctx context.Context, tenantID string, status models.CandidateStatus, minConfidence float64, page, pageSize int) ([]models.PotentialRelationship, int, error) {
	ctx, span := tracing.StartSpan(ctx, "candidate.Repository.List")
	defer span.End()

	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	if page < 1 {
		page = 1
	}

	where := func(sb *sqlbuilder.SelectBuilder) []string {
		conds := []string{sb.Equal("tenant_id", tenantID)}
		if status != "" {
			conds = append(conds, sb.Equal("status", status))
		}
		if minConfidence > 0 {
			conds = append(conds, sb.GreaterEqualThan("confidence", minConfidence))
		}
		return conds
	}

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("potential_relationships")
	countSb.Where(where(countSb)...)

	query, args := countSb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count candidates")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list candidates")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns)
	sb.From("potential_relationships")
	sb.Where(where(sb)...)
	sb.OrderBy("confidence DESC", "created_at DESC")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args = sb.Build()
	var candidates []models.PotentialRelationship
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list candidates")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list candidates")
	}

	return candidates, total, nil
}

// MarkReviewed transitions a pending candidate to a terminal status. The
// WHERE status = 'pending' guard is the compare-and-swap: a concurrent or
// repeated review matches zero rows and reports AlreadyReviewed.
func (r *Repository) MarkReviewed(ctx context.Context, tenantID string, id string, status models.CandidateStatus, reviewedBy string) (*models.PotentialRelationship, error) {
	ctx, span := tracing.StartSpan(ctx, "candidate.Repository.MarkReviewed")
	defer span.End()

	now := time.Now().UTC()
	query := `
		UPDATE potential_relationships
		SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $4 AND tenant_id = $5 AND status = 'pending'
	`

	exec := database.FromContext(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, status, reviewedBy, now, id, tenantID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark candidate reviewed")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update candidate")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, getErr := r.Get(ctx, tenantID, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf("candidate %s is already %s", id, existing.Status))
	}

	// Read back through the same executor so an uncommitted transaction sees
	// its own write.
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns)
	sb.From("potential_relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	selectQuery, selectArgs := sb.Build()
	var candidate models.PotentialRelationship
	if err := exec.GetContext(ctx, &candidate, selectQuery, selectArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read back reviewed candidate")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update candidate")
	}

	return &candidate, nil
}
