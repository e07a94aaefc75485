package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

func contactWith(company, position, city, state string, tags ...string) *models.Contact {
	c := &models.Contact{ID: "c", TenantID: "t", Name: "c", Tags: tags}
	if company != "" {
		c.Company = &company
	}
	if position != "" {
		c.Position = &position
	}
	if city != "" {
		c.City = &city
	}
	if state != "" {
		c.State = &state
	}
	return c
}

func TestScorePair(t *testing.T) {
	t.Run("no overlap scores zero", func(t *testing.T) {
		scored := scorePair(
			contactWith("Acme", "Engineer", "Oakland", "CA"),
			contactWith("Globex", "Designer", "Austin", "TX"),
		)
		assert.Equal(t, 0.0, scored.confidence)
		assert.Empty(t, scored.evidence)
		assert.Equal(t, models.RelationshipTypeOther, scored.relationshipType)
	})

	t.Run("shared company proposes colleague", func(t *testing.T) {
		scored := scorePair(
			contactWith("Acme", "", "", ""),
			contactWith("acme ", "", "", ""),
		)
		assert.InDelta(t, companyScore, scored.confidence, 1e-9)
		assert.Equal(t, models.RelationshipTypeColleague, scored.relationshipType)
		assert.Equal(t, []string{"Both work at Acme"}, scored.evidence)
	})

	t.Run("company location and seniority stack", func(t *testing.T) {
		scored := scorePair(
			contactWith("Acme", "CTO", "Oakland", "CA"),
			contactWith("Acme", "Chief of Staff", "Oakland", "CA"),
		)
		assert.InDelta(t, companyScore+locationScore+seniorityScore, scored.confidence, 1e-9)
		assert.Len(t, scored.evidence, 3)
	})

	t.Run("tag overlap capped", func(t *testing.T) {
		scored := scorePair(
			contactWith("", "", "", "", "sailing", "golf", "chess"),
			contactWith("", "", "", "", "Sailing", "golf", "chess"),
		)
		assert.InDelta(t, maxTagScore, scored.confidence, 1e-9)
		assert.Equal(t, models.RelationshipTypeMutualFriend, scored.relationshipType)
	})

	t.Run("confidence clamped", func(t *testing.T) {
		a := contactWith("Acme", "CEO", "Oakland", "CA", "sailing", "golf")
		b := contactWith("Acme", "CFO", "Oakland", "CA", "sailing", "golf")
		scored := scorePair(a, b)
		assert.LessOrEqual(t, scored.confidence, maxConfidence)
	})

	t.Run("individual band does not score", func(t *testing.T) {
		scored := scorePair(
			contactWith("", "Engineer", "", ""),
			contactWith("", "Designer", "", ""),
		)
		assert.Equal(t, 0.0, scored.confidence)
	})
}

func TestSeniorityBand(t *testing.T) {
	tests := []struct {
		position string
		expected string
	}{
		{"CEO", "executive"},
		{"Co-Founder", "executive"},
		{"VP of Engineering", "leadership"},
		{"Head of Growth", "leadership"},
		{"Engineering Manager", "management"},
		{"Software Engineer", "individual"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			assert.Equal(t, tt.expected, seniorityBand(tt.position))
		})
	}
}

func TestSharedLocation(t *testing.T) {
	t.Run("city and state must both match", func(t *testing.T) {
		assert.Empty(t, sharedLocation(
			contactWith("", "", "Oakland", "CA"),
			contactWith("", "", "Oakland", "MI"),
		))
	})

	t.Run("state-only match", func(t *testing.T) {
		assert.Equal(t, "CA", sharedLocation(
			contactWith("", "", "", "CA"),
			contactWith("", "", "", "ca"),
		))
	})
}
