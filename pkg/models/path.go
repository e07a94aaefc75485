package models

// PathResult is the outcome of a shortest-path search. Exists=false with a
// nil Path means the search completed and no path was found within the degree
// bound, which is an expected result rather than an error.
type PathResult struct {
	Exists   bool             `json:"exists"`
	Degrees  int              `json:"degrees"`
	Path     []ContactSummary `json:"path,omitempty"`
	Strength float64          `json:"strength,omitempty"`
}

// GraphPath is one qualifying path from a constrained multi-path search.
// Strength is the minimum edge strength along the path.
type GraphPath struct {
	Contacts          []ContactSummary   `json:"contacts"`
	Degrees           int                `json:"degrees"`
	Strength          float64            `json:"strength"`
	RelationshipTypes []RelationshipType `json:"relationship_types"`
}

// PathsResult is the outcome of a constrained multi-path search. PathsFound
// is zero when no path satisfies the strength threshold.
type PathsResult struct {
	Paths      []GraphPath `json:"paths"`
	PathsFound int         `json:"paths_found"`
}

// MutualConnectionsResult holds the intersection of two contacts' first
// degree neighbor sets, excluding the contacts themselves.
type MutualConnectionsResult struct {
	Contacts   []Contact `json:"contacts"`
	TotalCount int       `json:"total_count"`
}
