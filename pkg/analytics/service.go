package analytics

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// EdgeReader is the edge store contract required for metric computation
type EdgeReader interface {
	ListByContact(ctx context.Context, tenantID string, contactID string) ([]models.Relationship, error)
	ListAmongContacts(ctx context.Context, tenantID string, contactIDs []string) ([]models.Relationship, error)
}

// ContactReader is the contact collaborator contract
type ContactReader interface {
	Get(ctx context.Context, tenantID string, id string) (*models.Contact, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Contact, error)
}

// CacheStore persists computed records keyed by contact
type CacheStore interface {
	GetByContact(ctx context.Context, tenantID string, contactID string) (*models.NetworkAnalytics, error)
	Upsert(ctx context.Context, record *models.NetworkAnalytics) (*models.NetworkAnalytics, error)
	DeleteByContact(ctx context.Context, tenantID string, contactID string) error
}

// Config holds the scoring constants. The influence divisor and diversity
// caps are product-tuned values, surfaced here rather than hard-coded so they
// can change without a release.
type Config struct {
	StaleAfter time.Duration

	DirectWeight    float64
	ReachWeight     float64
	StrengthWeight  float64
	BetweenWeight   float64
	DiversityWeight float64
	ScoreDivisor    float64

	CompanyCap  int
	TierCap     int
	LocationCap int
}

// DefaultConfig returns the standard scoring constants
func DefaultConfig() Config {
	return Config{
		StaleAfter:      24 * time.Hour,
		DirectWeight:    0.4,
		ReachWeight:     0.2,
		StrengthWeight:  0.2,
		BetweenWeight:   0.1,
		DiversityWeight: 0.1,
		ScoreDivisor:    10,
		CompanyCap:      10,
		TierCap:         15,
		LocationCap:     20,
	}
}

// Service computes and caches per-contact network metrics. A cached record is
// served until it passes the staleness threshold, then recomputed
// synchronously on read (cache-aside, read-through).
type Service struct {
	edges    EdgeReader
	contacts ContactReader
	cache    CacheStore
	config   Config
	logger   ectologger.Logger
	nowFn    func() time.Time
}

// NewService creates a new analytics service
func NewService(edges EdgeReader, contacts ContactReader, cache CacheStore, config Config, logger ectologger.Logger) *Service {
	if config.StaleAfter <= 0 {
		config.StaleAfter = 24 * time.Hour
	}
	if config.ScoreDivisor <= 0 {
		config.ScoreDivisor = 10
	}
	return &Service{
		edges:    edges,
		contacts: contacts,
		cache:    cache,
		config:   config,
		logger:   logger,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the cached record when fresh, otherwise recomputes before
// returning.
func (s *Service) Get(ctx context.Context, scope models.Scope, contactID string) (*models.NetworkAnalytics, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.Service.Get")
	defer span.End()

	if _, err := s.contacts.Get(ctx, scope.TenantID, contactID); err != nil {
		return nil, err
	}

	cached, err := s.cache.GetByContact(ctx, scope.TenantID, contactID)
	if err != nil {
		return nil, err
	}
	if cached != nil && !cached.IsStale(s.nowFn(), s.config.StaleAfter) {
		return cached, nil
	}

	return s.Compute(ctx, scope, contactID)
}

// Invalidate drops the cached record for a contact so the next Get recomputes
// immediately instead of waiting out the staleness threshold.
func (s *Service) Invalidate(ctx context.Context, scope models.Scope, contactID string) error {
	ctx, span := tracing.StartSpan(ctx, "analytics.Service.Invalidate")
	defer span.End()

	return s.cache.DeleteByContact(ctx, scope.TenantID, contactID)
}

// Compute derives all metrics from the contact's neighborhood and upserts the
// cache record. Recomputation is idempotent; rerunning against an unchanged
// graph writes the same values.
func (s *Service) Compute(ctx context.Context, scope models.Scope, contactID string) (*models.NetworkAnalytics, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.Service.Compute")
	defer span.End()

	direct, err := s.edges.ListByContact(ctx, scope.TenantID, contactID)
	if err != nil {
		return nil, err
	}

	record := &models.NetworkAnalytics{
		TenantID:          scope.TenantID,
		ContactID:         contactID,
		TotalConnections:  len(direct),
		DirectConnections: len(direct),
	}

	neighborIDs := make([]string, 0, len(direct))
	for _, edge := range direct {
		if edge.IsMutual {
			record.MutualConnections++
		}
		if edge.IsVerified {
			record.VerifiedConnections++
		}
		if edge.ContactID == contactID {
			neighborIDs = append(neighborIDs, edge.RelatedContactID)
		} else {
			neighborIDs = append(neighborIDs, edge.ContactID)
		}
	}

	// Reach counts edges among direct neighbors that do not touch the
	// contact itself: a 2nd-degree edge count, not a distinct node count.
	among, err := s.edges.ListAmongContacts(ctx, scope.TenantID, neighborIDs)
	if err != nil {
		return nil, err
	}
	record.NetworkReach = len(among)

	neighbors, err := s.contacts.GetByIDs(ctx, scope.TenantID, neighborIDs)
	if err != nil {
		return nil, err
	}

	record.IndustryDiversity = diversityOf(neighbors, s.config.CompanyCap, func(c models.Contact) string {
		return stringOrEmpty(c.Company)
	})
	record.GeographicSpread = diversityOf(neighbors, s.config.LocationCap, func(c models.Contact) string {
		city, state := stringOrEmpty(c.City), stringOrEmpty(c.State)
		if city == "" && state == "" {
			return ""
		}
		return city + "," + state
	})
	record.SenioritySpread = diversityOf(neighbors, s.config.TierCap, func(c models.Contact) string {
		return stringOrEmpty(c.Position)
	})

	record.InfluenceScore = s.influenceScore(record)

	stored, err := s.cache.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"contact_id":  contactID,
		"connections": record.DirectConnections,
		"reach":       record.NetworkReach,
	}).Debug("Computed network analytics")

	return stored, nil
}

// influenceScore is a weighted sum of connection count, reach and diversity,
// scaled by the configured divisor and clamped to [0,1]. The raw sum can
// exceed 1 for well-connected contacts before clamping.
func (s *Service) influenceScore(record *models.NetworkAnalytics) float64 {
	raw := s.config.DirectWeight*float64(record.DirectConnections) +
		s.config.ReachWeight*float64(record.NetworkReach) +
		s.config.StrengthWeight*record.IndustryDiversity +
		s.config.BetweenWeight*record.GeographicSpread +
		s.config.DiversityWeight*record.SenioritySpread

	score := raw / s.config.ScoreDivisor
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// diversityOf normalizes the distinct-value count of an attribute across
// neighbors by a fixed cap, clipped to 1.0. Empty values do not count.
func diversityOf(contacts []models.Contact, limit int, keyFn func(models.Contact) string) float64 {
	if limit <= 0 {
		return 0
	}
	distinct := make(map[string]bool)
	for _, c := range contacts {
		if key := keyFn(c); key != "" {
			distinct[key] = true
		}
	}
	ratio := float64(len(distinct)) / float64(limit)
	if ratio > 1 {
		return 1
	}
	return ratio
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
