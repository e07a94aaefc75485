package graph

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

var labelPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitizeLabel(label string) string {
	cleaned := labelPattern.ReplaceAllString(label, "_")
	if cleaned == "" {
		return "RELATED_TO"
	}
	return cleaned
}

// Mirror projects contacts and relationship edges into the graph database.
// A nil Mirror (mirroring disabled) is safe to call.
type Mirror struct {
	client *Client
	logger ectologger.Logger
}

// NewMirror creates a new graph mirror
func NewMirror(client *Client, logger ectologger.Logger) *Mirror {
	return &Mirror{
		client: client,
		logger: logger,
	}
}

// UpsertContact merges a contact node keyed by (id, tenant_id)
func (m *Mirror) UpsertContact(ctx context.Context, contact *models.Contact) error {
	if m == nil || m.client == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.UpsertContact")
	defer span.End()

	cypher := `
		MERGE (c:Contact {id: $id, tenant_id: $tenant_id})
		SET c.name = $name, c.company = $company, c.position = $position
		RETURN c
	`

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        contact.ID,
			"tenant_id": contact.TenantID,
			"name":      contact.Name,
			"company":   contact.Company,
			"position":  contact.Position,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error("Failed to upsert contact node in graph")
		return fmt.Errorf("failed to upsert contact node: %w", err)
	}

	return nil
}

// UpsertRelationship merges the edge between two contact nodes. The label is
// the relationship type so Cypher queries can filter by it.
func (m *Mirror) UpsertRelationship(ctx context.Context, rel *models.Relationship) error {
	if m == nil || m.client == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.UpsertRelationship")
	defer span.End()

	cypher := fmt.Sprintf(`
		MERGE (from:Contact {id: $from_id, tenant_id: $tenant_id})
		MERGE (to:Contact {id: $to_id, tenant_id: $tenant_id})
		MERGE (from)-[r:%s {id: $rel_id, tenant_id: $tenant_id}]->(to)
		SET r.strength = $strength, r.confidence = $confidence, r.source = $source
		RETURN r
	`, sanitizeLabel(string(rel.RelationshipType)))

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"from_id":    rel.ContactID,
			"to_id":      rel.RelatedContactID,
			"rel_id":     rel.ID,
			"tenant_id":  rel.TenantID,
			"strength":   rel.Strength,
			"confidence": rel.Confidence,
			"source":     rel.Source,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"relationship_id": rel.ID}).Error("Failed to mirror relationship in graph")
		return fmt.Errorf("failed to mirror relationship: %w", err)
	}

	return nil
}

// RemoveRelationship deletes the mirrored edge by id
func (m *Mirror) RemoveRelationship(ctx context.Context, tenantID string, relID string) error {
	if m == nil || m.client == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.RemoveRelationship")
	defer span.End()

	cypher := `
		MATCH ()-[r {id: $id, tenant_id: $tenant_id}]->()
		DELETE r
	`

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        relID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"relationship_id": relID}).Error("Failed to remove relationship from graph")
		return fmt.Errorf("failed to remove relationship from graph: %w", err)
	}

	return nil
}
