package discovery

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/events"
	"github.com/mylesweissleder/newday-graph/pkg/graph"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// ContactReader is the contact collaborator contract
type ContactReader interface {
	Get(ctx context.Context, tenantID string, id string) (*models.Contact, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.Contact, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Contact, error)
}

// EdgeStore is the edge store contract: reads to avoid proposing existing
// connections, writes to materialize approved candidates.
type EdgeStore interface {
	ListByContact(ctx context.Context, tenantID string, contactID string) ([]models.Relationship, error)
	Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error)
}

// CandidateStore persists potential relationships
type CandidateStore interface {
	UpsertBatch(ctx context.Context, candidates []*models.PotentialRelationship) error
	Get(ctx context.Context, tenantID string, id string) (*models.PotentialRelationship, error)
	List(ctx context.Context, tenantID string, status models.CandidateStatus, minConfidence float64, page, pageSize int) ([]models.PotentialRelationship, int, error)
	MarkReviewed(ctx context.Context, tenantID string, id string, status models.CandidateStatus, reviewedBy string) (*models.PotentialRelationship, error)
}

// JobStore persists batch discovery job records
type JobStore interface {
	Create(ctx context.Context, job *models.DiscoveryJob) (*models.DiscoveryJob, error)
	Get(ctx context.Context, tenantID string, id string) (*models.DiscoveryJob, error)
	UpdateProgress(ctx context.Context, tenantID string, id string, scanned, failed, candidatesFound int) error
	Finish(ctx context.Context, tenantID string, id string, status models.JobStatus, failureReason *string) error
}

// Config tunes candidate persistence and approval
type Config struct {
	TopCandidates      int
	MinConfidence      float64
	HighConfidence     float64
	ApproveMaxStrength float64
	WorkerCount        int
}

// DefaultConfig returns the standard discovery tuning
func DefaultConfig() Config {
	return Config{
		TopCandidates:      10,
		MinConfidence:      0.5,
		HighConfidence:     0.7,
		ApproveMaxStrength: 0.8,
		WorkerCount:        4,
	}
}

// Service proposes candidate edges from contact attribute similarity and
// manages the review lifecycle that turns them into real relationships.
type Service struct {
	contacts   ContactReader
	edges      EdgeStore
	candidates CandidateStore
	jobs       JobStore
	db         database.DB
	mirror     *graph.Mirror
	emitter    *events.Emitter
	config     Config
	logger     ectologger.Logger
}

// NewService creates a new discovery service
func NewService(contacts ContactReader, edges EdgeStore, candidates CandidateStore, jobs JobStore, db database.DB, mirror *graph.Mirror, emitter *events.Emitter, config Config, logger ectologger.Logger) *Service {
	if config.TopCandidates <= 0 {
		config.TopCandidates = 10
	}
	if config.ApproveMaxStrength <= 0 {
		config.ApproveMaxStrength = 0.8
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	return &Service{
		contacts:   contacts,
		edges:      edges,
		candidates: candidates,
		jobs:       jobs,
		db:         db,
		mirror:     mirror,
		emitter:    emitter,
		config:     config,
		logger:     logger,
	}
}

// DiscoverForContact scores every unconnected contact in the tenant against
// the given one and persists the strongest candidates. The full scored list
// is returned regardless of how many crossed the persistence cutoff;
// rerunning refines existing pending rows instead of duplicating them.
func (s *Service) DiscoverForContact(ctx context.Context, scope models.Scope, contactID string) (*models.DiscoveryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.DiscoverForContact")
	defer span.End()

	contact, err := s.contacts.Get(ctx, scope.TenantID, contactID)
	if err != nil {
		return nil, err
	}

	others, err := s.contacts.ListByTenant(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}

	edges, err := s.edges.ListByContact(ctx, scope.TenantID, contactID)
	if err != nil {
		return nil, err
	}
	connected := make(map[string]bool, len(edges))
	for _, edge := range edges {
		connected[edge.ContactID] = true
		connected[edge.RelatedContactID] = true
	}

	var discovered []models.PotentialRelationship
	for i := range others {
		other := &others[i]
		if other.ID == contactID || connected[other.ID] {
			continue
		}

		scored := scorePair(contact, other)
		if scored.confidence <= 0 {
			continue
		}

		candidate := models.PotentialRelationship{
			TenantID:         scope.TenantID,
			ContactID:        contactID,
			RelatedContactID: other.ID,
			RelationshipType: scored.relationshipType,
			Confidence:       scored.confidence,
			Evidence:         scored.evidence,
			Status:           models.CandidateStatusPending,
		}
		if scope.ActorID != "" {
			actorID := scope.ActorID
			candidate.DiscoveredBy = &actorID
		}
		discovered = append(discovered, candidate)
	}

	sort.SliceStable(discovered, func(i, j int) bool {
		if discovered[i].Confidence != discovered[j].Confidence {
			return discovered[i].Confidence > discovered[j].Confidence
		}
		return discovered[i].RelatedContactID < discovered[j].RelatedContactID
	})

	result := &models.DiscoveryResult{
		ContactID:       contactID,
		Candidates:      discovered,
		TotalDiscovered: len(discovered),
	}
	for _, c := range discovered {
		if c.Confidence >= s.config.HighConfidence {
			result.HighConfidence++
		}
	}

	var toPersist []*models.PotentialRelationship
	for i := range discovered {
		if len(toPersist) >= s.config.TopCandidates {
			break
		}
		if discovered[i].Confidence >= s.config.MinConfidence {
			toPersist = append(toPersist, &discovered[i])
		}
	}
	if err := s.candidates.UpsertBatch(ctx, toPersist); err != nil {
		return nil, err
	}
	result.Persisted = len(toPersist)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"contact_id":      contactID,
		"discovered":      result.TotalDiscovered,
		"high_confidence": result.HighConfidence,
		"persisted":       result.Persisted,
	}).Info("Discovery completed for contact")

	return result, nil
}

// ListCandidates returns candidates with the proposed contact's summary
func (s *Service) ListCandidates(ctx context.Context, scope models.Scope, status models.CandidateStatus, minConfidence float64, page, pageSize int) (*models.CandidateListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.ListCandidates")
	defer span.End()

	candidates, total, err := s.candidates.List(ctx, scope.TenantID, status, minConfidence, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.RelatedContactID)
	}
	contacts, err := s.contacts.GetByIDs(ctx, scope.TenantID, ids)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]models.ContactSummary, len(contacts))
	for i := range contacts {
		summaries[contacts[i].ID] = contacts[i].Summary()
	}

	items := make([]models.CandidateWithContact, 0, len(candidates))
	for _, c := range candidates {
		summary, ok := summaries[c.RelatedContactID]
		if !ok {
			summary = models.ContactSummary{ID: c.RelatedContactID}
		}
		items = append(items, models.CandidateWithContact{
			PotentialRelationship: c,
			RelatedContact:        summary,
		})
	}

	return &models.CandidateListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Approve transitions a pending candidate to approved and materializes the
// relationship edge in the same transaction, so a review either fully lands
// or not at all. Strength is the candidate's confidence capped, evidence is
// carried into the edge notes.
func (s *Service) Approve(ctx context.Context, scope models.Scope, candidateID string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.Approve")
	defer span.End()

	ctxTx, tx, err := s.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	// Roll back with the outer context: ctxTx marks the transaction as open,
	// which turns Rollback into a no-op and would leave the tx held on error.
	defer tx.Rollback(ctx)

	candidate, err := s.candidates.MarkReviewed(ctxTx, scope.TenantID, candidateID, models.CandidateStatusApproved, scope.ActorID)
	if err != nil {
		return nil, err
	}

	strength := candidate.Confidence
	if strength > s.config.ApproveMaxStrength {
		strength = s.config.ApproveMaxStrength
	}
	notes := strings.Join(candidate.Evidence, "; ")

	rel := &models.Relationship{
		TenantID:         scope.TenantID,
		ContactID:        candidate.ContactID,
		RelatedContactID: candidate.RelatedContactID,
		RelationshipType: candidate.RelationshipType,
		Strength:         strength,
		Confidence:       candidate.Confidence,
		Source:           models.SourceDiscoveryApproved,
		Notes:            &notes,
		DiscoveredBy:     candidate.DiscoveredBy,
	}

	created, err := s.edges.Create(ctxTx, rel)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	if mirrorErr := s.mirror.UpsertRelationship(ctx, created); mirrorErr != nil {
		s.logger.WithContext(ctx).WithError(mirrorErr).Warn("Failed to mirror approved relationship to graph")
	}
	if s.emitter != nil {
		if emitErr := s.emitter.EmitCandidateReviewed(ctx, events.EventCandidateApproved, scope, candidate); emitErr != nil {
			s.logger.WithContext(ctx).WithError(emitErr).Warn("Failed to emit candidate approved event")
		}
	}

	return created, nil
}

// Reject transitions a pending candidate to rejected. No edge is created and
// the candidate never becomes pending again.
func (s *Service) Reject(ctx context.Context, scope models.Scope, candidateID string) (*models.PotentialRelationship, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.Reject")
	defer span.End()

	candidate, err := s.candidates.MarkReviewed(ctx, scope.TenantID, candidateID, models.CandidateStatusRejected, scope.ActorID)
	if err != nil {
		return nil, err
	}

	if s.emitter != nil {
		if emitErr := s.emitter.EmitCandidateReviewed(ctx, events.EventCandidateRejected, scope, candidate); emitErr != nil {
			s.logger.WithContext(ctx).WithError(emitErr).Warn("Failed to emit candidate rejected event")
		}
	}

	return candidate, nil
}

// GetJob returns a batch discovery job record
func (s *Service) GetJob(ctx context.Context, scope models.Scope, jobID string) (*models.DiscoveryJob, error) {
	ctx, span := tracing.StartSpan(ctx, "discovery.Service.GetJob")
	defer span.End()

	return s.jobs.Get(ctx, scope.TenantID, jobID)
}
