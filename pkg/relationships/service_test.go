package relationships

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

const testTenant = "tenant-1"

var testScope = models.Scope{TenantID: testTenant, ActorID: "actor-1"}

type fakeEdgeRepo struct {
	edges map[string]*models.Relationship
}

func newFakeEdgeRepo() *fakeEdgeRepo {
	return &fakeEdgeRepo{edges: map[string]*models.Relationship{}}
}

func (f *fakeEdgeRepo) Create(_ context.Context, rel *models.Relationship) (*models.Relationship, error) {
	for _, e := range f.edges {
		if e.TenantID != rel.TenantID {
			continue
		}
		samePair := (e.ContactID == rel.ContactID && e.RelatedContactID == rel.RelatedContactID) ||
			(e.ContactID == rel.RelatedContactID && e.RelatedContactID == rel.ContactID)
		if samePair {
			return nil, httperror.NewHTTPError(http.StatusConflict, "relationship already exists between these contacts")
		}
	}
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	rel.CreatedAt = time.Now().UTC()
	rel.UpdatedAt = rel.CreatedAt
	f.edges[rel.ID] = rel
	return rel, nil
}

func (f *fakeEdgeRepo) Get(_ context.Context, tenantID string, id string) (*models.Relationship, error) {
	rel, ok := f.edges[id]
	if !ok || rel.TenantID != tenantID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
	}
	return rel, nil
}

func (f *fakeEdgeRepo) GetByPair(_ context.Context, tenantID string, a, b string) (*models.Relationship, error) {
	for _, e := range f.edges {
		if e.TenantID != tenantID {
			continue
		}
		if (e.ContactID == a && e.RelatedContactID == b) || (e.ContactID == b && e.RelatedContactID == a) {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEdgeRepo) Update(_ context.Context, tenantID string, id string, patch *models.UpdateRelationshipRequest) (*models.Relationship, error) {
	rel, ok := f.edges[id]
	if !ok || rel.TenantID != tenantID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
	}
	if patch.Strength != nil {
		rel.Strength = *patch.Strength
	}
	if patch.Notes != nil {
		rel.Notes = patch.Notes
	}
	now := time.Now().UTC()
	rel.LastVerified = &now
	rel.UpdatedAt = now
	return rel, nil
}

func (f *fakeEdgeRepo) Delete(_ context.Context, tenantID string, id string) error {
	rel, ok := f.edges[id]
	if !ok || rel.TenantID != tenantID {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %s not found", id))
	}
	delete(f.edges, id)
	return nil
}

func (f *fakeEdgeRepo) ListByContact(_ context.Context, tenantID string, contactID string) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, e := range f.edges {
		if e.TenantID == tenantID && (e.ContactID == contactID || e.RelatedContactID == contactID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeContacts struct {
	contacts map[string]models.Contact
}

func (f *fakeContacts) Get(_ context.Context, tenantID string, id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("contact %s not found", id))
	}
	return &c, nil
}

func (f *fakeContacts) GetByIDs(_ context.Context, tenantID string, ids []string) ([]models.Contact, error) {
	var out []models.Contact
	for _, id := range ids {
		if c, ok := f.contacts[id]; ok && c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAnalytics struct {
	record      *models.NetworkAnalytics
	invalidated []string
}

func (f *fakeAnalytics) Get(_ context.Context, _ models.Scope, _ string) (*models.NetworkAnalytics, error) {
	return f.record, nil
}

func (f *fakeAnalytics) Invalidate(_ context.Context, _ models.Scope, contactID string) error {
	f.invalidated = append(f.invalidated, contactID)
	return nil
}

func silentLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func setup() (*Service, *fakeEdgeRepo, *fakeContacts) {
	edges := newFakeEdgeRepo()
	contacts := &fakeContacts{contacts: map[string]models.Contact{
		"a": {ID: "a", TenantID: testTenant, Name: "Ada"},
		"b": {ID: "b", TenantID: testTenant, Name: "Ben"},
		"c": {ID: "c", TenantID: testTenant, Name: "Cam"},
		"x": {ID: "x", TenantID: "tenant-2", Name: "Xan"},
	}}
	svc := NewService(edges, contacts, &fakeAnalytics{}, nil, nil, silentLogger())
	return svc, edges, contacts
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults applied and actor stamped", func(t *testing.T) {
		svc, _, _ := setup()
		created, err := svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "b",
			RelationshipType: models.RelationshipTypeColleague,
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultStrength, created.Strength)
		assert.Equal(t, DefaultConfidence, created.Confidence)
		assert.Equal(t, models.SourceManual, created.Source)
		require.NotNil(t, created.DiscoveredBy)
		assert.Equal(t, "actor-1", *created.DiscoveredBy)
		assert.Equal(t, "Ben", created.RelatedContact.Name)
	})

	t.Run("self loop rejected", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "a",
			RelationshipType: models.RelationshipTypeFriend,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("missing contact rejected", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "ghost",
			RelationshipType: models.RelationshipTypeFriend,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})

	t.Run("cross-tenant contact rejected", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "x",
			RelationshipType: models.RelationshipTypeFriend,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})

	t.Run("duplicate pair rejected in both directions", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "b",
			RelationshipType: models.RelationshipTypeColleague,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "a",
			RelatedContactID: "b",
			RelationshipType: models.RelationshipTypeColleague,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

		_, err = svc.Create(ctx, testScope, &models.CreateRelationshipRequest{
			ContactID:        "b",
			RelatedContactID: "a",
			RelationshipType: models.RelationshipTypeColleague,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	})
}

func TestGetRelationships(t *testing.T) {
	ctx := context.Background()
	svc, edges, _ := setup()

	_, err := edges.Create(ctx, &models.Relationship{TenantID: testTenant, ContactID: "a", RelatedContactID: "b"})
	require.NoError(t, err)
	_, err = edges.Create(ctx, &models.Relationship{TenantID: testTenant, ContactID: "c", RelatedContactID: "a"})
	require.NoError(t, err)

	t.Run("both directions annotated with other endpoint", func(t *testing.T) {
		result, err := svc.GetRelationships(ctx, testScope, "a", false)
		require.NoError(t, err)
		require.Equal(t, 2, result.TotalCount)
		assert.Nil(t, result.Analytics)

		names := map[string]bool{}
		for _, item := range result.Items {
			names[item.RelatedContact.Name] = true
		}
		assert.True(t, names["Ben"])
		assert.True(t, names["Cam"])
	})

	t.Run("analytics included on request", func(t *testing.T) {
		svc.analytics = &fakeAnalytics{record: &models.NetworkAnalytics{ContactID: "a", DirectConnections: 2}}
		result, err := svc.GetRelationships(ctx, testScope, "a", true)
		require.NoError(t, err)
		require.NotNil(t, result.Analytics)
		assert.Equal(t, 2, result.Analytics.DirectConnections)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, edges, _ := setup()

	created, err := edges.Create(ctx, &models.Relationship{TenantID: testTenant, ContactID: "a", RelatedContactID: "b"})
	require.NoError(t, err)

	strength := 0.9
	updated, err := svc.Update(ctx, testScope, created.ID, &models.UpdateRelationshipRequest{Strength: &strength})
	require.NoError(t, err)
	assert.Equal(t, 0.9, updated.Strength)
	require.NotNil(t, updated.LastVerified)

	_, err = svc.Update(ctx, testScope, "missing", &models.UpdateRelationshipRequest{Strength: &strength})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, edges, _ := setup()
	cache := &fakeAnalytics{}
	svc.analytics = cache

	created, err := edges.Create(ctx, &models.Relationship{TenantID: testTenant, ContactID: "a", RelatedContactID: "b"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testScope, created.ID))
	assert.ElementsMatch(t, []string{"a", "b"}, cache.invalidated)

	err = svc.Delete(ctx, testScope, created.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.Len(t, cache.invalidated, 2)
}
