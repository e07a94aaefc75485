package models

import (
	"time"

	"github.com/lib/pq"
)

// CandidateStatus is the review state of a potential relationship
type CandidateStatus string

const (
	// CandidateStatusPending awaits review
	CandidateStatusPending CandidateStatus = "pending"
	// CandidateStatusApproved was materialized into a relationship edge (terminal)
	CandidateStatusApproved CandidateStatus = "approved"
	// CandidateStatusRejected was dismissed by a reviewer (terminal)
	CandidateStatusRejected CandidateStatus = "rejected"
)

// IsTerminal reports whether the status admits no further transitions.
func (s CandidateStatus) IsTerminal() bool {
	return s == CandidateStatusApproved || s == CandidateStatusRejected
}

// PotentialRelationship is an algorithmically proposed, unverified edge.
// Unique per (contact_id, related_contact_id); discovery reruns refine
// confidence and evidence via upsert rather than duplicating rows.
type PotentialRelationship struct {
	ID               string           `json:"id" db:"id"`
	TenantID         string           `json:"tenant_id" db:"tenant_id"`
	ContactID        string           `json:"contact_id" db:"contact_id"`
	RelatedContactID string           `json:"related_contact_id" db:"related_contact_id"`
	RelationshipType RelationshipType `json:"relationship_type" db:"relationship_type"`
	Confidence       float64          `json:"confidence" db:"confidence"`
	Evidence         pq.StringArray   `json:"evidence" db:"evidence"`
	Status           CandidateStatus  `json:"status" db:"status"`
	DiscoveredBy     *string          `json:"discovered_by,omitempty" db:"discovered_by"`
	ReviewedBy       *string          `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// CandidateWithContact annotates a candidate with the proposed contact's summary.
type CandidateWithContact struct {
	PotentialRelationship
	RelatedContact ContactSummary `json:"related_contact"`
}

// CandidateListResponse is the API response for listing candidates
type CandidateListResponse struct {
	Items      []CandidateWithContact `json:"items"`
	TotalCount int                    `json:"total_count"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
}

// DiscoveryResult is the outcome of a single-contact discovery run. The full
// scored list is returned even when only the top slice was persisted.
type DiscoveryResult struct {
	ContactID       string                  `json:"contact_id"`
	Candidates      []PotentialRelationship `json:"candidates"`
	TotalDiscovered int                     `json:"total_discovered"`
	HighConfidence  int                     `json:"high_confidence"`
	Persisted       int                     `json:"persisted"`
}
