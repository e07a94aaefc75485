package relationship

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/models"
)

func setupRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(raw, "postgres"), logger)
	return NewRepository(db, logger), mock
}

func relationshipRows(rel *models.Relationship) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "contact_id", "related_contact_id", "relationship_type",
		"strength", "confidence", "is_mutual", "is_verified", "source",
		"notes", "discovered_by", "last_verified", "created_at", "updated_at",
	}).AddRow(
		rel.ID, rel.TenantID, rel.ContactID, rel.RelatedContactID, rel.RelationshipType,
		rel.Strength, rel.Confidence, rel.IsMutual, rel.IsVerified, rel.Source,
		rel.Notes, rel.DiscoveredBy, rel.LastVerified, rel.CreatedAt, rel.UpdatedAt,
	)
}

func TestRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`INSERT INTO relationships`).WillReturnResult(sqlmock.NewResult(0, 1))

		rel := &models.Relationship{
			TenantID:         "tenant-1",
			ContactID:        "contact-a",
			RelatedContactID: "contact-b",
			RelationshipType: models.RelationshipTypeColleague,
			Strength:         0.5,
			Confidence:       0.8,
			Source:           models.SourceManual,
		}
		created, err := repo.Create(ctx, rel)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate pair maps to conflict", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`INSERT INTO relationships`).WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(ctx, &models.Relationship{
			TenantID:         "tenant-1",
			ContactID:        "contact-a",
			RelatedContactID: "contact-b",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	})
}

func TestRepositoryGet(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT .+ FROM relationships`).WillReturnRows(relationshipRows(&models.Relationship{
			ID:               "rel-1",
			TenantID:         "tenant-1",
			ContactID:        "contact-a",
			RelatedContactID: "contact-b",
			RelationshipType: models.RelationshipTypeFriend,
			Strength:         0.7,
			Confidence:       0.8,
			Source:           models.SourceManual,
			CreatedAt:        now,
			UpdatedAt:        now,
		}))

		rel, err := repo.Get(ctx, "tenant-1", "rel-1")
		require.NoError(t, err)
		assert.Equal(t, "rel-1", rel.ID)
		assert.Equal(t, models.RelationshipTypeFriend, rel.RelationshipType)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM relationships`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "tenant-1", "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestRepositoryGetByPair(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM relationships`).WillReturnError(sql.ErrNoRows)

	rel, err := repo.GetByPair(ctx, "tenant-1", "contact-a", "contact-b")
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestRepositoryUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes last_verified and rereads", func(t *testing.T) {
		repo, mock := setupRepo(t)
		now := time.Now().UTC()
		strength := 0.9
		mock.ExpectExec(`UPDATE relationships`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .+ FROM relationships`).WillReturnRows(relationshipRows(&models.Relationship{
			ID:               "rel-1",
			TenantID:         "tenant-1",
			ContactID:        "contact-a",
			RelatedContactID: "contact-b",
			Strength:         strength,
			LastVerified:     &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}))

		updated, err := repo.Update(ctx, "tenant-1", "rel-1", &models.UpdateRelationshipRequest{Strength: &strength})
		require.NoError(t, err)
		assert.Equal(t, strength, updated.Strength)
		require.NotNil(t, updated.LastVerified)
	})

	t.Run("zero rows maps to not found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`UPDATE relationships`).WillReturnResult(sqlmock.NewResult(0, 0))

		strength := 0.9
		_, err := repo.Update(ctx, "tenant-1", "missing", &models.UpdateRelationshipRequest{Strength: &strength})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes edge", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`DELETE FROM relationships`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, "tenant-1", "rel-1"))
	})

	t.Run("zero rows maps to not found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`DELETE FROM relationships`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "tenant-1", "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
