package models

import (
	"github.com/lib/pq"
)

// Contact is the read-only view of a contact used for similarity scoring
// and neighbor summaries. The engine never mutates contacts.
type Contact struct {
	ID       string         `json:"id" db:"id"`
	TenantID string         `json:"tenant_id" db:"tenant_id"`
	Name     string         `json:"name" db:"name"`
	Email    *string        `json:"email,omitempty" db:"email"`
	Company  *string        `json:"company,omitempty" db:"company"`
	Position *string        `json:"position,omitempty" db:"position"`
	City     *string        `json:"city,omitempty" db:"city"`
	State    *string        `json:"state,omitempty" db:"state"`
	Country  *string        `json:"country,omitempty" db:"country"`
	Tags     pq.StringArray `json:"tags,omitempty" db:"tags"`
	IsActive bool           `json:"is_active" db:"is_active"`
}

// ContactSummary is the trimmed contact shape attached to edges and paths.
type ContactSummary struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Company  *string `json:"company,omitempty" db:"company"`
	Position *string `json:"position,omitempty" db:"position"`
}

// Summary projects a contact down to its summary shape.
func (c *Contact) Summary() ContactSummary {
	return ContactSummary{
		ID:       c.ID,
		Name:     c.Name,
		Company:  c.Company,
		Position: c.Position,
	}
}
