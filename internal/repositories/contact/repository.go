package contact

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// Repository reads contacts. The graph engine never writes to this table;
// contact CRUD is owned by the surrounding application.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const contactColumns = "id, tenant_id, name, email, company, position, city, state, country, tags, is_active"

// Get retrieves a contact by ID within a tenant
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns)
	sb.From("contacts")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var contact models.Contact
	if err := r.db.GetContext(ctx, &contact, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("contact %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get contact")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get contact")
	}

	return &contact, nil
}

// ListByTenant retrieves all active contacts in a tenant
func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ListByTenant")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns)
	sb.From("contacts")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_active", true),
	)
	sb.OrderBy("id")

	query, args := sb.Build()
	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list contacts")
	}

	return contacts, nil
}

// GetByIDs retrieves contacts by ID set within a tenant. Missing IDs are
// silently omitted from the result.
func (r *Repository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []models.Contact{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns)
	sb.From("contacts")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.In("id", idsToAny(ids)...),
	)
	sb.OrderBy("id")

	query, args := sb.Build()
	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get contacts by ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get contacts")
	}

	return contacts, nil
}

// BelongsToTenant reports whether a contact exists in the given tenant
func (r *Repository) BelongsToTenant(ctx context.Context, tenantID string, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.BelongsToTenant")
	defer span.End()

	query := `SELECT EXISTS(SELECT 1 FROM contacts WHERE id = $1 AND tenant_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id, tenantID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check contact tenant ownership")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check contact")
	}

	return exists, nil
}

func idsToAny(ids []string) []any {
	result := make([]any, len(ids))
	for i, id := range ids {
		result[i] = id
	}
	return result
}
