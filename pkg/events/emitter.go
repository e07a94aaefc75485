// Package events handles event emission for relationship and candidate
// lifecycle changes.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/mylesweissleder/newday-graph/pkg/kafka"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Event types emitted by the engine
const (
	EventRelationshipCreated = "relationship.created"
	EventRelationshipUpdated = "relationship.updated"
	EventRelationshipDeleted = "relationship.deleted"
	EventCandidateApproved   = "candidate.approved"
	EventCandidateRejected   = "candidate.rejected"
	EventBatchCompleted      = "discovery.batch.completed"
)

// Emitter publishes lifecycle events. A nil producer disables emission, so
// callers never need to branch on whether Kafka is configured.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRelationship emits a relationship lifecycle event
func (e *Emitter) EmitRelationship(ctx context.Context, eventType string, scope models.Scope, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRelationship")
	defer span.End()

	if e.producer == nil {
		return nil
	}

	data, err := json.Marshal(rel)
	if err != nil {
		return err
	}

	event := &kafka.GraphEvent{
		EventType: eventType,
		TenantID:  scope.TenantID,
		SubjectID: rel.ID,
		ActorID:   scope.ActorID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"event_type": eventType}).Error("Failed to emit relationship event")
		return err
	}

	return nil
}

// EmitCandidateReviewed emits a candidate approval or rejection event
func (e *Emitter) EmitCandidateReviewed(ctx context.Context, eventType string, scope models.Scope, candidate *models.PotentialRelationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCandidateReviewed")
	defer span.End()

	if e.producer == nil {
		return nil
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return err
	}

	event := &kafka.GraphEvent{
		EventType: eventType,
		TenantID:  scope.TenantID,
		SubjectID: candidate.ID,
		ActorID:   scope.ActorID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"event_type": eventType}).Error("Failed to emit candidate event")
		return err
	}

	return nil
}

// EmitBatchCompleted emits the terminal event for a batch discovery job
func (e *Emitter) EmitBatchCompleted(ctx context.Context, scope models.Scope, job *models.DiscoveryJob) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchCompleted")
	defer span.End()

	if e.producer == nil {
		return nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	event := &kafka.GraphEvent{
		EventType: EventBatchCompleted,
		TenantID:  scope.TenantID,
		SubjectID: job.ID,
		ActorID:   scope.ActorID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit batch completed event")
		return err
	}

	return nil
}
