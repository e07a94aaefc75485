package models

import "time"

// NetworkAnalytics is the cached per-contact metrics record. It is a pure
// function of the edge store restricted to the contact's neighborhood at
// computation time, recomputed when older than the staleness threshold.
//
// NetworkReach counts 2nd-degree edges (edges among direct neighbors that do
// not touch the contact itself), not distinct 2nd-degree contacts.
type NetworkAnalytics struct {
	ID                  string    `json:"id" db:"id"`
	TenantID            string    `json:"tenant_id" db:"tenant_id"`
	ContactID           string    `json:"contact_id" db:"contact_id"`
	TotalConnections    int       `json:"total_connections" db:"total_connections"`
	DirectConnections   int       `json:"direct_connections" db:"direct_connections"`
	MutualConnections   int       `json:"mutual_connections" db:"mutual_connections"`
	VerifiedConnections int       `json:"verified_connections" db:"verified_connections"`
	NetworkReach        int       `json:"network_reach" db:"network_reach"`
	InfluenceScore      float64   `json:"influence_score" db:"influence_score"`
	IndustryDiversity   float64   `json:"industry_diversity" db:"industry_diversity"`
	GeographicSpread    float64   `json:"geographic_spread" db:"geographic_spread"`
	SenioritySpread     float64   `json:"seniority_spread" db:"seniority_spread"`
	LastCalculated      time.Time `json:"last_calculated" db:"last_calculated"`
}

// IsStale reports whether the record is older than the given threshold.
func (a *NetworkAnalytics) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(a.LastCalculated) >= threshold
}
