package analytics

import (
	"context"
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

// Repository handles the network analytics cache table, keyed by contact.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new analytics repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const analyticsColumns = "id, tenant_id, contact_id, total_connections, direct_connections, mutual_connections, verified_connections, network_reach, influence_score, industry_diversity, geographic_spread, seniority_spread, last_calculated"

// GetByContact retrieves the cached record for a contact. Returns nil
// without error when nothing has been computed yet.
func (r *Repository) GetByContact(ctx context.Context, tenantID string, contactID string) (*models.NetworkAnalytics, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.Repository.GetByContact")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(analyticsColumns)
	sb.From("network_analytics")
	sb.Where(
		sb.Equal("contact_id", contactID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var record models.NetworkAnalytics
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get network analytics")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get network analytics")
	}

	return &record, nil
}

// Upsert writes a freshly computed record, keyed by (tenant_id, contact_id).
// Recomputation is idempotent so last writer wins.
func (r *Repository) Upsert(ctx context.Context, record *models.NetworkAnalytics) (*models.NetworkAnalytics, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.Repository.Upsert")
	defer span.End()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.LastCalculated = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("network_analytics")
	sb.Cols("id", "tenant_id", "contact_id", "total_connections", "direct_connections", "mutual_connections", "verified_connections", "network_reach", "influence_score", "industry_diversity", "geographic_spread", "seniority_spread", "last_calculated")
	sb.Values(record.ID, record.TenantID, record.ContactID, record.TotalConnections, record.DirectConnections, record.MutualConnections, record.VerifiedConnections, record.NetworkReach, record.InfluenceScore, record.IndustryDiversity, record.GeographicSpread, record.SenioritySpread, record.LastCalculated)

	query, args := sb.Build()
	query += ` ON CONFLICT (tenant_id, contact_id) DO UPDATE
		SET total_connections = EXCLUDED.total_connections,
			direct_connections = EXCLUDED.direct_connections,
			mutual_connections = EXCLUDED.mutual_connections,
			verified_connections = EXCLUDED.verified_connections,
			network_reach = EXCLUDED.network_reach,
			influence_score = EXCLUDED.influence_score,
			industry_diversity = EXCLUDED.industry_diversity,
			geographic_spread = EXCLUDED.geographic_spread,
			seniority_spread = EXCLUDED.seniority_spread,
			last_calculated = EXCLUDED.last_calculated`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contact_id": record.ContactID}).Error("Failed to upsert network analytics")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert network analytics")
	}

	return record, nil
}

// DeleteByContact removes the cached record for a contact
func (r *Repository) DeleteByContact(ctx context.Context, tenantID string, contactID string) error {
	ctx, span := tracing.StartSpan(ctx, "analytics.Repository.DeleteByContact")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("network_analytics")
	sb.Where(
		sb.Equal("contact_id", contactID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete network analytics")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete network analytics")
	}

	return nil
}
