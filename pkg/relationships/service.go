package relationships

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/mylesweissleder/newday-graph/pkg/events"
	"github.com/mylesweissleder/newday-graph/pkg/graph"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// Default edge attributes applied when a create request omits them
const (
	DefaultStrength   = 0.5
	DefaultConfidence = 0.8
)

// EdgeRepository is the storage contract for relationship edges
type EdgeRepository interface {
	Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error)
	Get(ctx context.Context, tenantID string, id string) (*models.Relationship, error)
	GetByPair(ctx context.Context, tenantID string, contactA, contactB string) (*models.Relationship, error)
	Update(ctx context.Context, tenantID string, id string, patch *models.UpdateRelationshipRequest) (*models.Relationship, error)
	Delete(ctx context.Context, tenantID string, id string) error
	ListByContact(ctx context.Context, tenantID string, contactID string) ([]models.Relationship, error)
}

// ContactReader is the contact collaborator contract
type ContactReader interface {
	Get(ctx context.Context, tenantID string, id string) (*models.Contact, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Contact, error)
}

// AnalyticsProvider supplies the optional analytics snapshot on listings and
// cache invalidation when an edge is removed.
type AnalyticsProvider interface {
	Get(ctx context.Context, scope models.Scope, contactID string) (*models.NetworkAnalytics, error)
	Invalidate(ctx context.Context, scope models.Scope, contactID string) error
}

// Service is the edge store: canonical create/update/delete over verified
// relationships plus neighbor listings. The graph mirror and event emitter
// are best effort; a failure there never fails the write.
type Service struct {
	edges     EdgeRepository
	contacts  ContactReader
	analytics AnalyticsProvider
	mirror    *graph.Mirror
	emitter   *events.Emitter
	logger    ectologger.Logger
}

// NewService creates a new relationship service
func NewService(edges EdgeRepository, contacts ContactReader, analytics AnalyticsProvider, mirror *graph.Mirror, emitter *events.Emitter, logger ectologger.Logger) *Service {
	return &Service{
		edges:     edges,
		contacts:  contacts,
		analytics: analytics,
		mirror:    mirror,
		emitter:   emitter,
		logger:    logger,
	}
}

// Create persists a new edge between two contacts in the caller's tenant.
// The pair pre-check gives a clean Conflict for the common case; the
// database's unordered-pair unique index remains the authority under races.
func (s *Service) Create(ctx context.Context, scope models.Scope, req *models.CreateRelationshipRequest) (*models.RelationshipWithContact, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Create")
	defer span.End()

	if req.ContactID == req.RelatedContactID {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "a contact cannot have a relationship with itself")
	}

	if _, err := s.contacts.Get(ctx, scope.TenantID, req.ContactID); err != nil {
		return nil, err
	}
	related, err := s.contacts.Get(ctx, scope.TenantID, req.RelatedContactID)
	if err != nil {
		return nil, err
	}

	existing, err := s.edges.GetByPair(ctx, scope.TenantID, req.ContactID, req.RelatedContactID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, httperror.NewHTTPError(http.StatusConflict, "relationship already exists between these contacts")
	}

	rel := &models.Relationship{
		TenantID:         scope.TenantID,
		ContactID:        req.ContactID,
		RelatedContactID: req.RelatedContactID,
		RelationshipType: req.RelationshipType,
		Strength:         DefaultStrength,
		Confidence:       DefaultConfidence,
		IsMutual:         req.IsMutual,
		Source:           req.Source,
		Notes:            req.Notes,
	}
	if req.Strength != nil {
		rel.Strength = *req.Strength
	}
	if req.Confidence != nil {
		rel.Confidence = *req.Confidence
	}
	if rel.Source == "" {
		rel.Source = models.SourceManual
	}
	if scope.ActorID != "" {
		actorID := scope.ActorID
		rel.DiscoveredBy = &actorID
	}

	created, err := s.edges.Create(ctx, rel)
	if err != nil {
		return nil, err
	}

	s.mirrorUpsert(ctx, created)
	s.emit(ctx, events.EventRelationshipCreated, scope, created)

	return &models.RelationshipWithContact{
		Relationship:   *created,
		RelatedContact: related.Summary(),
	}, nil
}

// GetRelationships returns every edge touching a contact, each annotated
// with the other endpoint's summary, optionally with an analytics snapshot.
func (s *Service) GetRelationships(ctx context.Context, scope models.Scope, contactID string, includeAnalytics bool) (*models.RelationshipListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.GetRelationships")
	defer span.End()

	if _, err := s.contacts.Get(ctx, scope.TenantID, contactID); err != nil {
		return nil, err
	}

	edges, err := s.edges.ListByContact(ctx, scope.TenantID, contactID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(edges))
	for _, edge := range edges {
		otherIDs = append(otherIDs, otherEndpoint(edge, contactID))
	}

	others, err := s.contacts.GetByIDs(ctx, scope.TenantID, otherIDs)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]models.ContactSummary, len(others))
	for i := range others {
		summaries[others[i].ID] = others[i].Summary()
	}

	items := make([]models.RelationshipWithContact, 0, len(edges))
	for _, edge := range edges {
		otherID := otherEndpoint(edge, contactID)
		summary, ok := summaries[otherID]
		if !ok {
			summary = models.ContactSummary{ID: otherID}
		}
		items = append(items, models.RelationshipWithContact{
			Relationship:   edge,
			RelatedContact: summary,
		})
	}

	response := &models.RelationshipListResponse{
		Items:      items,
		TotalCount: len(items),
	}

	if includeAnalytics && s.analytics != nil {
		snapshot, err := s.analytics.Get(ctx, scope, contactID)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contact_id": contactID}).Warn("Failed to load analytics snapshot for relationship listing")
		} else {
			response.Analytics = snapshot
		}
	}

	return response, nil
}

// Get returns a single edge by id
func (s *Service) Get(ctx context.Context, scope models.Scope, id string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Get")
	defer span.End()

	return s.edges.Get(ctx, scope.TenantID, id)
}

// Update applies a patch to an edge and refreshes its verification timestamp
func (s *Service) Update(ctx context.Context, scope models.Scope, id string, patch *models.UpdateRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Update")
	defer span.End()

	updated, err := s.edges.Update(ctx, scope.TenantID, id, patch)
	if err != nil {
		return nil, err
	}

	s.mirrorUpsert(ctx, updated)
	s.emit(ctx, events.EventRelationshipUpdated, scope, updated)

	return updated, nil
}

// Delete removes an edge and invalidates the cached analytics for both
// endpoints; the next read recomputes against the shrunk neighborhood.
func (s *Service) Delete(ctx context.Context, scope models.Scope, id string) error {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Delete")
	defer span.End()

	rel, err := s.edges.Get(ctx, scope.TenantID, id)
	if err != nil {
		return err
	}

	if err := s.edges.Delete(ctx, scope.TenantID, id); err != nil {
		return err
	}

	if s.analytics != nil {
		for _, contactID := range []string{rel.ContactID, rel.RelatedContactID} {
			if invErr := s.analytics.Invalidate(ctx, scope, contactID); invErr != nil {
				s.logger.WithContext(ctx).WithError(invErr).WithFields(map[string]any{"contact_id": contactID}).Warn("Failed to invalidate analytics cache")
			}
		}
	}

	if mirrorErr := s.mirror.RemoveRelationship(ctx, scope.TenantID, id); mirrorErr != nil {
		s.logger.WithContext(ctx).WithError(mirrorErr).WithFields(map[string]any{"relationship_id": id}).Warn("Failed to remove relationship from graph mirror")
	}
	s.emit(ctx, events.EventRelationshipDeleted, scope, rel)

	return nil
}

func (s *Service) mirrorUpsert(ctx context.Context, rel *models.Relationship) {
	if err := s.mirror.UpsertRelationship(ctx, rel); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"relationship_id": rel.ID}).Warn("Failed to mirror relationship to graph")
	}
}

func (s *Service) emit(ctx context.Context, eventType string, scope models.Scope, rel *models.Relationship) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitRelationship(ctx, eventType, scope, rel); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn(fmt.Sprintf("Failed to emit %s event", eventType))
	}
}

func otherEndpoint(edge models.Relationship, contactID string) string {
	if edge.ContactID == contactID {
		return edge.RelatedContactID
	}
	return edge.ContactID
}
