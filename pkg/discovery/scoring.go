package discovery

import (
	"fmt"
	"strings"

	"github.com/mylesweissleder/newday-graph/pkg/models"
)

// Score contributions per matching signal. Confidence is the clamped sum, so
// a pair sharing company, location and seniority lands well above the
// persistence cutoff while a single weak signal stays below it.
const (
	companyScore   = 0.35
	locationScore  = 0.20
	seniorityScore = 0.15
	perTagScore    = 0.10
	maxTagScore    = 0.20
	maxConfidence  = 0.95
)

var seniorityBands = map[string][]string{
	"executive":  {"ceo", "cto", "cfo", "coo", "chief", "president", "founder", "partner"},
	"leadership": {"vp", "vice president", "director", "head of"},
	"management": {"manager", "lead", "principal"},
}

// seniorityBand buckets a free-text position into a coarse tier, empty when
// the position carries no recognizable signal.
func seniorityBand(position string) string {
	p := strings.ToLower(position)
	if p == "" {
		return ""
	}
	for band, markers := range seniorityBands {
		for _, marker := range markers {
			if strings.Contains(p, marker) {
				return band
			}
		}
	}
	return "individual"
}

type scoredPair struct {
	confidence       float64
	evidence         []string
	relationshipType models.RelationshipType
}

// scorePair rates how likely two contacts are connected based on attribute
// overlap. A zero confidence means no signal at all.
func scorePair(contact, other *models.Contact) scoredPair {
	result := scoredPair{relationshipType: models.RelationshipTypeOther}

	company := normalized(contact.Company)
	if company != "" && company == normalized(other.Company) {
		result.confidence += companyScore
		result.evidence = append(result.evidence, fmt.Sprintf("Both work at %s", strings.TrimSpace(*contact.Company)))
		result.relationshipType = models.RelationshipTypeColleague
	}

	if loc := sharedLocation(contact, other); loc != "" {
		result.confidence += locationScore
		result.evidence = append(result.evidence, fmt.Sprintf("Both located in %s", loc))
	}

	if band := seniorityBand(stringOrEmpty(contact.Position)); band != "" && band == seniorityBand(stringOrEmpty(other.Position)) && band != "individual" {
		result.confidence += seniorityScore
		result.evidence = append(result.evidence, fmt.Sprintf("Similar seniority (%s)", band))
	}

	if shared := sharedTags(contact.Tags, other.Tags); len(shared) > 0 {
		tagScore := perTagScore * float64(len(shared))
		if tagScore > maxTagScore {
			tagScore = maxTagScore
		}
		result.confidence += tagScore
		result.evidence = append(result.evidence, fmt.Sprintf("Shared interests: %s", strings.Join(shared, ", ")))
		if result.relationshipType == models.RelationshipTypeOther && len(shared) >= 2 {
			result.relationshipType = models.RelationshipTypeMutualFriend
		}
	}

	if result.confidence > maxConfidence {
		result.confidence = maxConfidence
	}

	return result
}

func sharedLocation(a, b *models.Contact) string {
	city, state := normalized(a.City), normalized(a.State)
	if city == "" && state == "" {
		return ""
	}
	if city != normalized(b.City) || state != normalized(b.State) {
		return ""
	}

	parts := []string{}
	if city != "" {
		parts = append(parts, strings.TrimSpace(*a.City))
	}
	if state != "" {
		parts = append(parts, strings.TrimSpace(*a.State))
	}
	return strings.Join(parts, ", ")
}

func sharedTags(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			set[t] = true
		}
	}
	var shared []string
	seen := make(map[string]bool)
	for _, tag := range b {
		t := strings.ToLower(strings.TrimSpace(tag))
		if set[t] && !seen[t] {
			seen[t] = true
			shared = append(shared, t)
		}
	}
	return shared
}

func normalized(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
