package graphindex

import (
	"sort"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

// Neighbor is one adjacency entry: the contact on the other end of an edge.
type Neighbor struct {
	ContactID        string
	Strength         float64
	RelationshipType models.RelationshipType
}

// Index is an undirected adjacency view over a tenant's edges. It is a pure
// transform built fresh per request; correctness never depends on it being
// cached or kept in sync with the store.
type Index struct {
	adjacency map[string][]Neighbor
	edgeCount int
}

// Build constructs the index from a flat edge list. Each stored directional
// edge contributes an adjacency entry in both directions. Neighbor lists are
// sorted by contact id so traversal order, and therefore BFS tie-breaking, is
// deterministic regardless of query order.
func Build(edges []models.Relationship) *Index {
	idx := &Index{
		adjacency: make(map[string][]Neighbor, len(edges)*2),
		edgeCount: len(edges),
	}

	for _, edge := range edges {
		idx.adjacency[edge.ContactID] = append(idx.adjacency[edge.ContactID], Neighbor{
			ContactID:        edge.RelatedContactID,
			Strength:         edge.Strength,
			RelationshipType: edge.RelationshipType,
		})
		idx.adjacency[edge.RelatedContactID] = append(idx.adjacency[edge.RelatedContactID], Neighbor{
			ContactID:        edge.ContactID,
			Strength:         edge.Strength,
			RelationshipType: edge.RelationshipType,
		})
	}

	for id := range idx.adjacency {
		neighbors := idx.adjacency[id]
		sort.Slice(neighbors, func(i, j int) bool {
			return neighbors[i].ContactID < neighbors[j].ContactID
		})
	}

	return idx
}

// Neighbors returns the adjacency list for a contact, nil if it has no edges
func (idx *Index) Neighbors(contactID string) []Neighbor {
	return idx.adjacency[contactID]
}

// NeighborIDs returns the set of contact ids adjacent to a contact
func (idx *Index) NeighborIDs(contactID string) map[string]bool {
	neighbors := idx.adjacency[contactID]
	ids := make(map[string]bool, len(neighbors))
	for _, n := range neighbors {
		ids[n.ContactID] = true
	}
	return ids
}

// Contains reports whether a contact has at least one edge
func (idx *Index) Contains(contactID string) bool {
	return len(idx.adjacency[contactID]) > 0
}

// EdgeCount returns the number of stored edges the index was built from
func (idx *Index) EdgeCount() int {
	return idx.edgeCount
}

// ContactCount returns the number of contacts with at least one edge
func (idx *Index) ContactCount() int {
	return len(idx.adjacency)
}
