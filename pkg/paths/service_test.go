package paths

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

type fakeStore struct {
	contacts map[string]models.Contact
	edges    []models.Relationship
}

func (f *fakeStore) ListByTenant(_ context.Context, tenantID string) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, e := range f.edges {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByContact(_ context.Context, tenantID string, contactID string) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, e := range f.edges {
		if e.TenantID == tenantID && (e.ContactID == contactID || e.RelatedContactID == contactID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, tenantID string, id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("contact %s not found", id))
	}
	return &c, nil
}

func (f *fakeStore) GetByIDs(_ context.Context, tenantID string, ids []string) ([]models.Contact, error) {
	var out []models.Contact
	for _, id := range ids {
		if c, ok := f.contacts[id]; ok && c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func silentLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

const testTenant = "tenant-1"

var testScope = models.Scope{TenantID: testTenant, ActorID: "actor-1"}

// fiveContactChain wires A-B(.9), B-C(.8), C-D(.3), D-E(.9)
func fiveContactChain() *fakeStore {
	store := &fakeStore{contacts: map[string]models.Contact{}}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		store.contacts[id] = models.Contact{ID: id, TenantID: testTenant, Name: id, IsActive: true}
	}
	store.edges = []models.Relationship{
		{TenantID: testTenant, ContactID: "a", RelatedContactID: "b", Strength: 0.9, RelationshipType: models.RelationshipTypeColleague},
		{TenantID: testTenant, ContactID: "b", RelatedContactID: "c", Strength: 0.8, RelationshipType: models.RelationshipTypeFriend},
		{TenantID: testTenant, ContactID: "c", RelatedContactID: "d", Strength: 0.3, RelationshipType: models.RelationshipTypeColleague},
		{TenantID: testTenant, ContactID: "d", RelatedContactID: "e", Strength: 0.9, RelationshipType: models.RelationshipTypeMentor},
	}
	return store
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, store, DefaultConfig(), silentLogger())
}

func TestShortestPath(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fiveContactChain())

	t.Run("no path within degree bound", func(t *testing.T) {
		result, err := svc.ShortestPath(ctx, testScope, "a", "e", 3)
		require.NoError(t, err)
		assert.False(t, result.Exists)
		assert.Empty(t, result.Path)
	})

	t.Run("path found at exact bound", func(t *testing.T) {
		result, err := svc.ShortestPath(ctx, testScope, "a", "e", 4)
		require.NoError(t, err)
		require.True(t, result.Exists)
		assert.Equal(t, 4, result.Degrees)

		ids := make([]string, 0, len(result.Path))
		for _, c := range result.Path {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
		assert.Equal(t, 0.3, result.Strength)
	})

	t.Run("same contact yields zero-length path", func(t *testing.T) {
		result, err := svc.ShortestPath(ctx, testScope, "a", "a", 4)
		require.NoError(t, err)
		assert.True(t, result.Exists)
		assert.Equal(t, 0, result.Degrees)
		require.Len(t, result.Path, 1)
		assert.Equal(t, "a", result.Path[0].ID)
	})

	t.Run("unknown contact is not found", func(t *testing.T) {
		_, err := svc.ShortestPath(ctx, testScope, "a", "nope", 4)
		require.Error(t, err)
		require.True(t, httperror.IsHTTPError(err))
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})

	t.Run("cross-tenant contact is not found", func(t *testing.T) {
		store := fiveContactChain()
		store.contacts["z"] = models.Contact{ID: "z", TenantID: "tenant-2", Name: "z"}

		_, err := newTestService(store).ShortestPath(ctx, testScope, "a", "z", 4)
		require.Error(t, err)
	})

	t.Run("tie broken by contact id order", func(t *testing.T) {
		store := &fakeStore{contacts: map[string]models.Contact{}}
		for _, id := range []string{"s", "m1", "m2", "t"} {
			store.contacts[id] = models.Contact{ID: id, TenantID: testTenant, Name: id}
		}
		store.edges = []models.Relationship{
			{TenantID: testTenant, ContactID: "s", RelatedContactID: "m2", Strength: 0.5},
			{TenantID: testTenant, ContactID: "s", RelatedContactID: "m1", Strength: 0.5},
			{TenantID: testTenant, ContactID: "m1", RelatedContactID: "t", Strength: 0.5},
			{TenantID: testTenant, ContactID: "m2", RelatedContactID: "t", Strength: 0.5},
		}

		result, err := newTestService(store).ShortestPath(ctx, testScope, "s", "t", 4)
		require.NoError(t, err)
		require.True(t, result.Exists)
		require.Len(t, result.Path, 3)
		assert.Equal(t, "m1", result.Path[1].ID)
	})
}

func TestFindPaths(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fiveContactChain())

	t.Run("weak link filtered out", func(t *testing.T) {
		result, err := svc.FindPaths(ctx, testScope, "a", "e", 4, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 0, result.PathsFound)
		assert.Empty(t, result.Paths)
	})

	t.Run("path qualifies without threshold", func(t *testing.T) {
		result, err := svc.FindPaths(ctx, testScope, "a", "e", 4, 0)
		require.NoError(t, err)
		require.Equal(t, 1, result.PathsFound)

		p := result.Paths[0]
		assert.Equal(t, 4, p.Degrees)
		assert.Equal(t, 0.3, p.Strength)
		assert.Equal(t, []models.RelationshipType{
			models.RelationshipTypeColleague,
			models.RelationshipTypeFriend,
			models.RelationshipTypeColleague,
			models.RelationshipTypeMentor,
		}, p.RelationshipTypes)
	})

	t.Run("multiple routes ordered short then strong", func(t *testing.T) {
		store := &fakeStore{contacts: map[string]models.Contact{}}
		for _, id := range []string{"s", "x", "y", "t"} {
			store.contacts[id] = models.Contact{ID: id, TenantID: testTenant, Name: id}
		}
		store.edges = []models.Relationship{
			{TenantID: testTenant, ContactID: "s", RelatedContactID: "x", Strength: 0.9},
			{TenantID: testTenant, ContactID: "x", RelatedContactID: "t", Strength: 0.9},
			{TenantID: testTenant, ContactID: "s", RelatedContactID: "y", Strength: 0.6},
			{TenantID: testTenant, ContactID: "y", RelatedContactID: "t", Strength: 0.7},
		}

		result, err := newTestService(store).FindPaths(ctx, testScope, "s", "t", 3, 0.5)
		require.NoError(t, err)
		require.Equal(t, 2, result.PathsFound)
		assert.Equal(t, 0.9, result.Paths[0].Strength)
		assert.Equal(t, 0.6, result.Paths[1].Strength)
	})
}

func TestMutualConnections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fiveContactChain())

	t.Run("intersection excludes endpoints", func(t *testing.T) {
		result, err := svc.MutualConnections(ctx, testScope, "a", "c")
		require.NoError(t, err)
		require.Equal(t, 1, result.TotalCount)
		assert.Equal(t, "b", result.Contacts[0].ID)
	})

	t.Run("symmetry", func(t *testing.T) {
		ab, err := svc.MutualConnections(ctx, testScope, "a", "c")
		require.NoError(t, err)
		ba, err := svc.MutualConnections(ctx, testScope, "c", "a")
		require.NoError(t, err)
		assert.Equal(t, ab.Contacts, ba.Contacts)
	})

	t.Run("no overlap is an empty result", func(t *testing.T) {
		result, err := svc.MutualConnections(ctx, testScope, "a", "e")
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalCount)
	})
}
