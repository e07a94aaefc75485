package models

import (
	"time"
)

// RelationshipType classifies the connection between two contacts
type RelationshipType string

const (
	RelationshipTypeColleague       RelationshipType = "colleague"
	RelationshipTypeFriend          RelationshipType = "friend"
	RelationshipTypeFamily          RelationshipType = "family"
	RelationshipTypeMentor          RelationshipType = "mentor"
	RelationshipTypeMentee          RelationshipType = "mentee"
	RelationshipTypeBusinessPartner RelationshipType = "business_partner"
	RelationshipTypeClient          RelationshipType = "client"
	RelationshipTypeInvestor        RelationshipType = "investor"
	RelationshipTypeIntroducedBy    RelationshipType = "introduced_by"
	RelationshipTypeMutualFriend    RelationshipType = "mutual_friend"
	RelationshipTypeOther           RelationshipType = "other"
)

// Edge provenance values
const (
	SourceManual            = "manual"
	SourceDiscoveryApproved = "discovery_approved"
	SourceImport            = "import"
)

// Relationship is a verified edge between two contacts in the same tenant.
// Storage is directional, semantics are undirected: an edge and its reverse
// are the same logical relationship.
type Relationship struct {
	ID               string           `json:"id" db:"id"`
	TenantID         string           `json:"tenant_id" db:"tenant_id"`
	ContactID        string           `json:"contact_id" db:"contact_id"`
	RelatedContactID string           `json:"related_contact_id" db:"related_contact_id"`
	RelationshipType RelationshipType `json:"relationship_type" db:"relationship_type"`
	Strength         float64          `json:"strength" db:"strength"`
	Confidence       float64          `json:"confidence" db:"confidence"`
	IsMutual         bool             `json:"is_mutual" db:"is_mutual"`
	IsVerified       bool             `json:"is_verified" db:"is_verified"`
	Source           string           `json:"source" db:"source"`
	Notes            *string          `json:"notes,omitempty" db:"notes"`
	DiscoveredBy     *string          `json:"discovered_by,omitempty" db:"discovered_by"`
	LastVerified     *time.Time       `json:"last_verified,omitempty" db:"last_verified"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// RelationshipWithContact annotates an edge with the "other" endpoint's summary.
type RelationshipWithContact struct {
	Relationship
	RelatedContact ContactSummary `json:"related_contact"`
}

// CreateRelationshipRequest is the request body for creating an edge
type CreateRelationshipRequest struct {
	ContactID        string           `json:"contact_id" validate:"required,uuid4"`
	RelatedContactID string           `json:"related_contact_id" validate:"required,uuid4"`
	RelationshipType RelationshipType `json:"relationship_type" validate:"required,oneof=colleague friend family mentor mentee business_partner client investor introduced_by mutual_friend other"`
	Strength         *float64         `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Confidence       *float64         `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	IsMutual         bool             `json:"is_mutual"`
	Source           string           `json:"source,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

// UpdateRelationshipRequest is the request body for patching an edge.
// Every update refreshes last_verified.
type UpdateRelationshipRequest struct {
	RelationshipType *RelationshipType `json:"relationship_type,omitempty" validate:"omitempty,oneof=colleague friend family mentor mentee business_partner client investor introduced_by mutual_friend other"`
	Strength         *float64          `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Confidence       *float64          `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	IsMutual         *bool             `json:"is_mutual,omitempty"`
	IsVerified       *bool             `json:"is_verified,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
}

// RelationshipListResponse is the API response for listing a contact's edges
type RelationshipListResponse struct {
	Items      []RelationshipWithContact `json:"items"`
	TotalCount int                       `json:"total_count"`
	Analytics  *NetworkAnalytics         `json:"analytics,omitempty"`
}
