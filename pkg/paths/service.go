package paths

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/mylesweissleder/newday-graph/pkg/graphindex"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// EdgeReader is the edge store contract required by the path engine
type EdgeReader interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.Relationship, error)
	ListByContact(ctx context.Context, tenantID string, contactID string) ([]models.Relationship, error)
}

// ContactReader is the contact collaborator contract
type ContactReader interface {
	Get(ctx context.Context, tenantID string, id string) (*models.Contact, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Contact, error)
}

// Config bounds traversal. MaxDegreeCap clamps caller-supplied degree limits.
type Config struct {
	DefaultMaxDegrees int
	MaxDegreeCap      int
	MaxResults        int
}

// DefaultConfig returns the standard traversal bounds
func DefaultConfig() Config {
	return Config{
		DefaultMaxDegrees: 4,
		MaxDegreeCap:      6,
		MaxResults:        20,
	}
}

// Service answers path, reachability and mutual connection queries over a
// tenant's graph. The adjacency index is rebuilt per call from the edge
// store, trading recomputation for freshness.
type Service struct {
	edges    EdgeReader
	contacts ContactReader
	config   Config
	logger   ectologger.Logger
}

// NewService creates a new path engine
func NewService(edges EdgeReader, contacts ContactReader, config Config, logger ectologger.Logger) *Service {
	if config.DefaultMaxDegrees <= 0 {
		config.DefaultMaxDegrees = 4
	}
	if config.MaxDegreeCap <= 0 {
		config.MaxDegreeCap = 6
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 20
	}
	return &Service{
		edges:    edges,
		contacts: contacts,
		config:   config,
		logger:   logger,
	}
}

// MutualConnections returns the contacts directly connected to both a and b,
// excluding a and b themselves. An empty intersection is a successful result.
func (s *Service) MutualConnections(ctx context.Context, scope models.Scope, contactA, contactB string) (*models.MutualConnectionsResult, error) {
	ctx, span := tracing.StartSpan(ctx, "paths.Service.MutualConnections")
	defer span.End()

	if _, err := s.contacts.Get(ctx, scope.TenantID, contactA); err != nil {
		return nil, err
	}
	if _, err := s.contacts.Get(ctx, scope.TenantID, contactB); err != nil {
		return nil, err
	}

	edgesA, err := s.edges.ListByContact(ctx, scope.TenantID, contactA)
	if err != nil {
		return nil, err
	}
	edgesB, err := s.edges.ListByContact(ctx, scope.TenantID, contactB)
	if err != nil {
		return nil, err
	}

	setA := neighborSet(edgesA, contactA)
	setB := neighborSet(edgesB, contactB)

	var mutualIDs []string
	for id := range setA {
		if setB[id] && id != contactA && id != contactB {
			mutualIDs = append(mutualIDs, id)
		}
	}
	sort.Strings(mutualIDs)

	contacts, err := s.contacts.GetByIDs(ctx, scope.TenantID, mutualIDs)
	if err != nil {
		return nil, err
	}

	return &models.MutualConnectionsResult{
		Contacts:   contacts,
		TotalCount: len(contacts),
	}, nil
}

// ShortestPath finds the minimum-hop path between two contacts via BFS,
// bounded by maxDegrees. Ties are broken by contact id order because the
// adjacency index sorts neighbor lists. A==B yields a zero-length path; no
// path within the bound is a successful "does not exist" result.
func (s *Service) ShortestPath(ctx context.Context, scope models.Scope, fromID, toID string, maxDegrees int) (*models.PathResult, error) {
	ctx, span := tracing.StartSpan(ctx, "paths.Service.ShortestPath")
	defer span.End()

	maxDegrees = s.clampDegrees(maxDegrees)

	if _, err := s.contacts.Get(ctx, scope.TenantID, fromID); err != nil {
		return nil, err
	}
	if _, err := s.contacts.Get(ctx, scope.TenantID, toID); err != nil {
		return nil, err
	}

	if fromID == toID {
		summaries, err := s.summarize(ctx, scope.TenantID, []string{fromID})
		if err != nil {
			return nil, err
		}
		return &models.PathResult{Exists: true, Degrees: 0, Path: summaries}, nil
	}

	idx, err := s.buildIndex(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}

	pathIDs := bfs(idx, fromID, toID, maxDegrees)
	if pathIDs == nil {
		return &models.PathResult{Exists: false}, nil
	}

	summaries, err := s.summarize(ctx, scope.TenantID, pathIDs)
	if err != nil {
		return nil, err
	}

	return &models.PathResult{
		Exists:   true,
		Degrees:  len(pathIDs) - 1,
		Path:     summaries,
		Strength: pathStrength(idx, pathIDs),
	}, nil
}

// FindPaths enumerates paths up to maxDegrees hops using only edges with
// strength >= minStrength. Each path reports its weakest-link strength and
// the sequence of relationship types along it. Zero qualifying paths is a
// successful result.
func (s *Service) FindPaths(ctx context.Context, scope models.Scope, fromID, toID string, maxDegrees int, minStrength float64) (*models.PathsResult, error) {
	ctx, span := tracing.StartSpan(ctx, "paths.Service.FindPaths")
	defer span.End()

	maxDegrees = s.clampDegrees(maxDegrees)

	if _, err := s.contacts.Get(ctx, scope.TenantID, fromID); err != nil {
		return nil, err
	}
	if _, err := s.contacts.Get(ctx, scope.TenantID, toID); err != nil {
		return nil, err
	}

	idx, err := s.buildIndex(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}

	found := enumeratePaths(idx, fromID, toID, maxDegrees, minStrength, s.config.MaxResults)

	result := &models.PathsResult{Paths: []models.GraphPath{}, PathsFound: len(found)}
	for _, p := range found {
		summaries, err := s.summarize(ctx, scope.TenantID, p.ids)
		if err != nil {
			return nil, err
		}
		result.Paths = append(result.Paths, models.GraphPath{
			Contacts:          summaries,
			Degrees:           len(p.ids) - 1,
			Strength:          p.strength,
			RelationshipTypes: p.types,
		})
	}

	sort.SliceStable(result.Paths, func(i, j int) bool {
		if result.Paths[i].Degrees != result.Paths[j].Degrees {
			return result.Paths[i].Degrees < result.Paths[j].Degrees
		}
		return result.Paths[i].Strength > result.Paths[j].Strength
	})

	return result, nil
}

func (s *Service) clampDegrees(maxDegrees int) int {
	if maxDegrees <= 0 {
		return s.config.DefaultMaxDegrees
	}
	if maxDegrees > s.config.MaxDegreeCap {
		return s.config.MaxDegreeCap
	}
	return maxDegrees
}

func (s *Service) buildIndex(ctx context.Context, tenantID string) (*graphindex.Index, error) {
	edges, err := s.edges.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return graphindex.Build(edges), nil
}

// summarize fetches contact summaries preserving the given id order
func (s *Service) summarize(ctx context.Context, tenantID string, ids []string) ([]models.ContactSummary, error) {
	contacts, err := s.contacts.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.ContactSummary, len(contacts))
	for i := range contacts {
		byID[contacts[i].ID] = contacts[i].Summary()
	}

	summaries := make([]models.ContactSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := byID[id]; ok {
			summaries = append(summaries, summary)
		} else {
			summaries = append(summaries, models.ContactSummary{ID: id})
		}
	}
	return summaries, nil
}

func neighborSet(edges []models.Relationship, selfID string) map[string]bool {
	set := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.ContactID == selfID {
			set[e.RelatedContactID] = true
		} else {
			set[e.ContactID] = true
		}
	}
	return set
}

// bfs returns the id sequence from start to target inclusive, or nil when no
// path exists within maxDegrees hops.
func bfs(idx *graphindex.Index, start, target string, maxDegrees int) []string {
	visited := map[string]bool{start: true}
	parent := map[string]string{}
	frontier := []string{start}

	for depth := 0; depth < maxDegrees && len(frontier) > 0; depth++ {
		var next []string
		for _, current := range frontier {
			for _, neighbor := range idx.Neighbors(current) {
				if visited[neighbor.ContactID] {
					continue
				}
				visited[neighbor.ContactID] = true
				parent[neighbor.ContactID] = current
				if neighbor.ContactID == target {
					return reconstruct(parent, start, target)
				}
				next = append(next, neighbor.ContactID)
			}
		}
		frontier = next
	}

	return nil
}

func reconstruct(parent map[string]string, start, target string) []string {
	path := []string{target}
	for current := target; current != start; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func pathStrength(idx *graphindex.Index, ids []string) float64 {
	if len(ids) < 2 {
		return 0
	}
	strength := 1.0
	for i := 0; i < len(ids)-1; i++ {
		if s, ok := edgeStrength(idx, ids[i], ids[i+1]); ok && s < strength {
			strength = s
		}
	}
	return strength
}

func edgeStrength(idx *graphindex.Index, a, b string) (float64, bool) {
	for _, n := range idx.Neighbors(a) {
		if n.ContactID == b {
			return n.Strength, true
		}
	}
	return 0, false
}

type foundPath struct {
	ids      []string
	strength float64
	types    []models.RelationshipType
}

// enumeratePaths walks all simple paths from start to target within the hop
// and strength bounds, stopping once maxResults paths are collected.
func enumeratePaths(idx *graphindex.Index, start, target string, maxDegrees int, minStrength float64, maxResults int) []foundPath {
	var results []foundPath
	onPath := map[string]bool{start: true}

	var walk func(current string, ids []string, types []models.RelationshipType, strength float64)
	walk = func(current string, ids []string, types []models.RelationshipType, strength float64) {
		if len(results) >= maxResults {
			return
		}
		if len(ids)-1 >= maxDegrees {
			return
		}
		for _, neighbor := range idx.Neighbors(current) {
			if neighbor.Strength < minStrength || onPath[neighbor.ContactID] {
				continue
			}

			nextStrength := strength
			if neighbor.Strength < nextStrength {
				nextStrength = neighbor.Strength
			}
			nextIDs := append(append([]string{}, ids...), neighbor.ContactID)
			nextTypes := append(append([]models.RelationshipType{}, types...), neighbor.RelationshipType)

			if neighbor.ContactID == target {
				results = append(results, foundPath{ids: nextIDs, strength: nextStrength, types: nextTypes})
				if len(results) >= maxResults {
					return
				}
				continue
			}

			onPath[neighbor.ContactID] = true
			walk(neighbor.ContactID, nextIDs, nextTypes, nextStrength)
			delete(onPath, neighbor.ContactID)
		}
	}

	walk(start, []string{start}, nil, 1.0)
	return results
}
