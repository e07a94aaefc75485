package relationship

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// Repository handles relationship edge persistence. Edges are stored as an
// ordered pair but are unique per unordered pair: the table carries a unique
// index on (tenant_id, LEAST(contact_id, related_contact_id),
// GREATEST(contact_id, related_contact_id)) which is the source of truth for
// duplicate detection under concurrent writers.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new relationship repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const relationshipColumns = "id, tenant_id, contact_id, related_contact_id, relationship_type, strength, confidence, is_mutual, is_verified, source, notes, discovered_by, last_verified, created_at, updated_at"

// Create persists a new edge. A duplicate unordered pair fails with Conflict
// regardless of any pre-check the caller performed.
func (r *Repository) Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Create")
	defer span.End()

	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	rel.CreatedAt = time.Now().UTC()
	rel.UpdatedAt = rel.CreatedAt

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("relationships")
	sb.Cols("id", "tenant_id", "contact_id", "related_contact_id", "relationship_type", "strength", "confidence", "is_mutual", "is_verified", "source", "notes", "discovered_by", "last_verified", "created_at", "updated_at")
	sb.Values(rel.ID, rel.TenantID, rel.ContactID, rel.RelatedContactID, rel.RelationshipType, rel.Strength, rel.Confidence, rel.IsMutual, rel.IsVerified, rel.Source, rel.Notes, rel.DiscoveredBy, rel.LastVerified, rel.CreatedAt, rel.UpdatedAt)

	query, args := sb.Build()
	exec := database.FromContext(ctx, r.db)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "relationship already exists between these contacts")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"relationship_id": rel.ID}).Error("Failed to create relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create relationship")
	}

	return rel, nil
}

// Get retrieves an edge by ID within a tenant
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns)
	sb.From("relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var rel models.Relationship
	if err := r.db.GetContext(ctx, &rel, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship")
	}

	return &rel, nil
}

// GetByPair gets the edge between two contacts regardless of storage order.
// Returns nil without error when no edge exists.
func (r *Repository) GetByPair(ctx context.Context, tenantID string, contactA, contactB string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.GetByPair")
	defer span.End()

	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE tenant_id = $1
		AND ((contact_id = $2 AND related_contact_id = $3) OR (contact_id = $3 AND related_contact_id = $2))
		LIMIT 1
	`

	var rel models.Relationship
	if err := r.db.GetContext(ctx, &rel, query, tenantID, contactA, contactB); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship by pair")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship")
	}

	return &rel, nil
}

// Update applies a patch to an edge. Every update refreshes last_verified.
func (r *Repository) Update(ctx context.Context, tenantID string, id string, patch *models.UpdateRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Update")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("relationships")

	assignments := []string{
		sb.Assign("last_verified", now),
		sb.Assign("updated_at", now),
	}
	if patch.RelationshipType != nil {
		assignments = append(assignments, sb.Assign("relationship_type", *patch.RelationshipType))
	}
	if patch.Strength != nil {
		assignments = append(assignments, sb.Assign("strength", *patch.Strength))
	}
	if patch.Confidence != nil {
		assignments = append(assignments, sb.Assign("confidence", *patch.Confidence))
	}
	if patch.IsMutual != nil {
		assignments = append(assignments, sb.Assign("is_mutual", *patch.IsMutual))
	}
	if patch.IsVerified != nil {
		assignments = append(assignments, sb.Assign("is_verified", *patch.IsVerified))
	}
	if patch.Notes != nil {
		assignments = append(assignments, sb.Assign("notes", *patch.Notes))
	}
	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update relationship")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
	}

	return r.Get(ctx, tenantID, id)
}

// Delete removes an edge. Removal is idempotent from the graph's point of
// view but a missing edge still reports NotFound to the caller.
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
	}

	return nil
}

// ListByContact retrieves all edges where the contact is either endpoint
func (r *Repository) ListByContact(ctx context.Context, tenantID string, contactID string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.ListByContact")
	defer span.End()

	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE tenant_id = $1
		AND (contact_id = $2 OR related_contact_id = $2)
		ORDER BY created_at DESC
	`

	var rels []models.Relationship
	if err := r.db.SelectContext(ctx, &rels, query, tenantID, contactID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list relationships by contact")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list relationships")
	}

	return rels, nil
}

// ListByTenant retrieves every edge in a tenant, ordered for deterministic
// adjacency construction.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.ListByTenant")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns)
	sb.From("relationships")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("contact_id", "related_contact_id")

	query, args := sb.Build()
	var rels []models.Relationship
	if err := r.db.SelectContext(ctx, &rels, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list relationships by tenant")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list relationships")
	}

	return rels, nil
}

// ListAmongContacts retrieves edges where both endpoints are in the given id
// set. Used for 2nd-degree reach counting.
func (r *Repository) ListAmongContacts(ctx context.Context, tenantID string, contactIDs []string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.ListAmongContacts")
	defer span.End()

	if len(contactIDs) == 0 {
		return []models.Relationship{}, nil
	}

	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE tenant_id = $1
		AND contact_id = ANY($2)
		AND related_contact_id = ANY($2)
	`

	var rels []models.Relationship
	if err := r.db.SelectContext(ctx, &rels, query, tenantID, pq.Array(contactIDs)); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list relationships among contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list relationships")
	}

	return rels, nil
}
