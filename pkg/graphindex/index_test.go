package graphindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

func edge(a, b string, strength float64) models.Relationship {
	return models.Relationship{
		ContactID:        a,
		RelatedContactID: b,
		Strength:         strength,
		RelationshipType: models.RelationshipTypeColleague,
	}
}

func TestBuild(t *testing.T) {
	t.Run("stored direction contributes both adjacency entries", func(t *testing.T) {
		idx := Build([]models.Relationship{edge("a", "b", 0.9)})

		require.Len(t, idx.Neighbors("a"), 1)
		require.Len(t, idx.Neighbors("b"), 1)
		assert.Equal(t, "b", idx.Neighbors("a")[0].ContactID)
		assert.Equal(t, "a", idx.Neighbors("b")[0].ContactID)
		assert.Equal(t, 0.9, idx.Neighbors("b")[0].Strength)
	})

	t.Run("neighbor lists are sorted by contact id", func(t *testing.T) {
		idx := Build([]models.Relationship{
			edge("hub", "zeta", 0.5),
			edge("alpha", "hub", 0.5),
			edge("hub", "mid", 0.5),
		})

		neighbors := idx.Neighbors("hub")
		require.Len(t, neighbors, 3)
		assert.Equal(t, "alpha", neighbors[0].ContactID)
		assert.Equal(t, "mid", neighbors[1].ContactID)
		assert.Equal(t, "zeta", neighbors[2].ContactID)
	})

	t.Run("empty edge list yields empty index", func(t *testing.T) {
		idx := Build(nil)

		assert.Nil(t, idx.Neighbors("anyone"))
		assert.False(t, idx.Contains("anyone"))
		assert.Equal(t, 0, idx.EdgeCount())
		assert.Equal(t, 0, idx.ContactCount())
	})

	t.Run("counts", func(t *testing.T) {
		idx := Build([]models.Relationship{
			edge("a", "b", 0.5),
			edge("b", "c", 0.5),
		})

		assert.Equal(t, 2, idx.EdgeCount())
		assert.Equal(t, 3, idx.ContactCount())
	})
}

func TestNeighborIDs(t *testing.T) {
	idx := Build([]models.Relationship{
		edge("a", "b", 0.5),
		edge("c", "a", 0.5),
	})

	ids := idx.NeighborIDs("a")
	assert.Equal(t, map[string]bool{"b": true, "c": true}, ids)
	assert.Empty(t, idx.NeighborIDs("d"))
}
