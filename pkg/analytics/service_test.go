package analytics

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

const testTenant = "tenant-1"

var testScope = models.Scope{TenantID: testTenant, ActorID: "actor-1"}

type fakeStore struct {
	contacts map[string]models.Contact
	edges    []models.Relationship
	cached   map[string]*models.NetworkAnalytics
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts: map[string]models.Contact{},
		cached:   map[string]*models.NetworkAnalytics{},
	}
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

func (f *fakeStore) ListAmongContacts(_ context.Context, tenantID string, contactIDs []string) ([]models.Relationship, error) {
	ids := map[string]bool{}
	for _, id := range contactIDs {
		ids[id] = true
	}
	var out []models.Relationship
	for _, e := range f.edges {
		if e.TenantID == tenantID && ids[e.ContactID] && ids[e.RelatedContactID] {
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

func (f *fakeStore) GetByContact(_ context.Context, tenantID string, contactID string) (*models.NetworkAnalytics, error) {
	record, ok := f.cached[contactID]
	if !ok || record.TenantID != tenantID {
		return nil, nil
	}
	return record, nil
}

func (f *fakeStore) Upsert(_ context.Context, record *models.NetworkAnalytics) (*models.NetworkAnalytics, error) {
	f.upserts++
	record.LastCalculated = time.Now().UTC()
	f.cached[record.ContactID] = record
	return record, nil
}

func (f *fakeStore) DeleteByContact(_ context.Context, tenantID string, contactID string) error {
	if record, ok := f.cached[contactID]; ok && record.TenantID == tenantID {
		delete(f.cached, contactID)
	}
	return nil
}

func silentLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string { return &s }

// hubNetwork wires "hub" to three neighbors at two companies, with one edge
// among the neighbors themselves.
func hubNetwork() *fakeStore {
	store := newFakeStore()
	store.contacts["hub"] = models.Contact{ID: "hub", TenantID: testTenant, Name: "hub"}
	store.contacts["n1"] = models.Contact{ID: "n1", TenantID: testTenant, Name: "n1", Company: strPtr("Acme"), City: strPtr("Oakland"), State: strPtr("CA"), Position: strPtr("CTO")}
	store.contacts["n2"] = models.Contact{ID: "n2", TenantID: testTenant, Name: "n2", Company: strPtr("Acme"), City: strPtr("Denver"), State: strPtr("CO"), Position: strPtr("VP Sales")}
	store.contacts["n3"] = models.Contact{ID: "n3", TenantID: testTenant, Name: "n3", Company: strPtr("Globex"), Position: strPtr("CTO")}
	store.edges = []models.Relationship{
		{TenantID: testTenant, ContactID: "hub", RelatedContactID: "n1", IsMutual: true, IsVerified: true},
		{TenantID: testTenant, ContactID: "n2", RelatedContactID: "hub", IsMutual: true},
		{TenantID: testTenant, ContactID: "hub", RelatedContactID: "n3"},
		{TenantID: testTenant, ContactID: "n1", RelatedContactID: "n2"},
	}
	return store
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	store := hubNetwork()
	svc := NewService(store, store, store, DefaultConfig(), silentLogger())

	record, err := svc.Compute(ctx, testScope, "hub")
	require.NoError(t, err)

	assert.Equal(t, 3, record.DirectConnections)
	assert.Equal(t, 3, record.TotalConnections)
	assert.Equal(t, 2, record.MutualConnections)
	assert.Equal(t, 1, record.VerifiedConnections)
	// one edge exists among the neighbors (n1-n2)
	assert.Equal(t, 1, record.NetworkReach)
	// 2 distinct companies / cap 10
	assert.InDelta(t, 0.2, record.IndustryDiversity, 1e-9)
	// 2 distinct city/state pairs / cap 20 (n3 has no location)
	assert.InDelta(t, 0.1, record.GeographicSpread, 1e-9)
	// 2 distinct positions / cap 15
	assert.InDelta(t, 2.0/15.0, record.SenioritySpread, 1e-9)

	expected := (0.4*3 + 0.2*1 + 0.2*0.2 + 0.1*0.1 + 0.1*(2.0/15.0)) / 10
	assert.InDelta(t, expected, record.InfluenceScore, 1e-9)
	assert.False(t, record.LastCalculated.IsZero())
}

func TestComputeIsolatedContact(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.contacts["loner"] = models.Contact{ID: "loner", TenantID: testTenant, Name: "loner"}
	svc := NewService(store, store, store, DefaultConfig(), silentLogger())

	record, err := svc.Compute(ctx, testScope, "loner")
	require.NoError(t, err)
	assert.Equal(t, 0, record.DirectConnections)
	assert.Equal(t, 0, record.NetworkReach)
	assert.Equal(t, 0.0, record.InfluenceScore)
}

func TestInfluenceScoreClamped(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, store, store, DefaultConfig(), silentLogger())

	score := svc.influenceScore(&models.NetworkAnalytics{DirectConnections: 100, NetworkReach: 50})
	assert.Equal(t, 1.0, score)
}

func TestGetReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh record served from cache", func(t *testing.T) {
		store := hubNetwork()
		svc := NewService(store, store, store, DefaultConfig(), silentLogger())

		first, err := svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		require.Equal(t, 1, store.upserts)

		second, err := svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		assert.Equal(t, 1, store.upserts)
		assert.Equal(t, first.LastCalculated, second.LastCalculated)
	})

	t.Run("invalidated record recomputed before staleness", func(t *testing.T) {
		store := hubNetwork()
		svc := NewService(store, store, store, DefaultConfig(), silentLogger())

		_, err := svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		require.Equal(t, 1, store.upserts)

		require.NoError(t, svc.Invalidate(ctx, testScope, "hub"))
		assert.Empty(t, store.cached)

		_, err = svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		assert.Equal(t, 2, store.upserts)
	})

	t.Run("stale record recomputed", func(t *testing.T) {
		store := hubNetwork()
		svc := NewService(store, store, store, DefaultConfig(), silentLogger())

		_, err := svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		store.cached["hub"].LastCalculated = time.Now().UTC().Add(-25 * time.Hour)
		stale := store.cached["hub"].LastCalculated

		refreshed, err := svc.Get(ctx, testScope, "hub")
		require.NoError(t, err)
		assert.Equal(t, 2, store.upserts)
		assert.True(t, refreshed.LastCalculated.After(stale))
	})

	t.Run("unknown contact is not found", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, store, store, DefaultConfig(), silentLogger())

		_, err := svc.Get(ctx, testScope, "ghost")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
