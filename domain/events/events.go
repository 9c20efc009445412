package events

import (
	"time"

	"codekata-backend/domain/tag"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Tag Events

// TagCreated is raised when a new tag enters the catalog.
type TagCreated struct {
	BaseEvent
	TagID   tag.ID `json:"tag_id"`
	Name    string `json:"name"`
	TagType string `json:"tag_type"`
}

// NewTagCreated creates a TagCreated event
func NewTagCreated(t *tag.Tag, timestamp time.Time) TagCreated {
	return TagCreated{
		BaseEvent: BaseEvent{
			AggregateID: t.ID.String(),
			EventType:   "tag.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		TagID:   t.ID,
		Name:    t.Name,
		TagType: t.Type.String(),
	}
}

// TagUpdated is raised when a tag's name, type, or description changes.
type TagUpdated struct {
	BaseEvent
	TagID tag.ID `json:"tag_id"`
	Name  string `json:"name"`
}

// NewTagUpdated creates a TagUpdated event
func NewTagUpdated(t *tag.Tag, timestamp time.Time) TagUpdated {
	return TagUpdated{
		BaseEvent: BaseEvent{
			AggregateID: t.ID.String(),
			EventType:   "tag.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		TagID: t.ID,
		Name:  t.Name,
	}
}

// TagDeleted is raised when a tag and all of its edges are removed.
type TagDeleted struct {
	BaseEvent
	TagID        tag.ID `json:"tag_id"`
	Name         string `json:"name"`
	RemovedEdges int    `json:"removed_edges"`
}

// NewTagDeleted creates a TagDeleted event
func NewTagDeleted(tagID tag.ID, name string, removedEdges int, timestamp time.Time) TagDeleted {
	return TagDeleted{
		BaseEvent: BaseEvent{
			AggregateID: tagID.String(),
			EventType:   "tag.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		TagID:        tagID,
		Name:         name,
		RemovedEdges: removedEdges,
	}
}

// Relationship Events

// RelationshipAdded is raised when a parent/child edge is committed. The
// child is the aggregate since its stored record carries the edge.
type RelationshipAdded struct {
	BaseEvent
	ParentID   tag.ID `json:"parent_id"`
	ChildID    tag.ID `json:"child_id"`
	ParentName string `json:"parent_name"`
	ChildName  string `json:"child_name"`
}

// NewRelationshipAdded creates a RelationshipAdded event
func NewRelationshipAdded(parentID, childID tag.ID, parentName, childName string, timestamp time.Time) RelationshipAdded {
	return RelationshipAdded{
		BaseEvent: BaseEvent{
			AggregateID: childID.String(),
			EventType:   "relationship.added",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID:   parentID,
		ChildID:    childID,
		ParentName: parentName,
		ChildName:  childName,
	}
}

// RelationshipRemoved is raised when a parent/child edge is removed.
type RelationshipRemoved struct {
	BaseEvent
	ParentID tag.ID `json:"parent_id"`
	ChildID  tag.ID `json:"child_id"`
}

// NewRelationshipRemoved creates a RelationshipRemoved event
func NewRelationshipRemoved(parentID, childID tag.ID, timestamp time.Time) RelationshipRemoved {
	return RelationshipRemoved{
		BaseEvent: BaseEvent{
			AggregateID: childID.String(),
			EventType:   "relationship.removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID: parentID,
		ChildID:  childID,
	}
}

// Suggestion Events

// SuggestionReviewed is raised when a normalization suggestion is accepted
// or rejected.
type SuggestionReviewed struct {
	BaseEvent
	SuggestionID string `json:"suggestion_id"`
	Name         string `json:"name"`
	Outcome      string `json:"outcome"`
	CreatedTagID string `json:"created_tag_id,omitempty"`
}

// NewSuggestionReviewed creates a SuggestionReviewed event
func NewSuggestionReviewed(suggestionID, name, outcome, createdTagID string, timestamp time.Time) SuggestionReviewed {
	return SuggestionReviewed{
		BaseEvent: BaseEvent{
			AggregateID: suggestionID,
			EventType:   "suggestion.reviewed",
			Timestamp:   timestamp,
			Version:     1,
		},
		SuggestionID: suggestionID,
		Name:         name,
		Outcome:      outcome,
		CreatedTagID: createdTagID,
	}
}

// Pipeline Events

// PipelineRunCompleted is raised when a normalization pipeline run finishes,
// successfully or not.
type PipelineRunCompleted struct {
	BaseEvent
	OperationID       string `json:"operation_id"`
	Status            string `json:"status"`
	TagsScanned       int    `json:"tags_scanned"`
	SuggestionsRaised int    `json:"suggestions_raised"`
}

// NewPipelineRunCompleted creates a PipelineRunCompleted event
func NewPipelineRunCompleted(operationID, status string, tagsScanned, suggestionsRaised int, timestamp time.Time) PipelineRunCompleted {
	return PipelineRunCompleted{
		BaseEvent: BaseEvent{
			AggregateID: operationID,
			EventType:   "pipeline.completed",
			Timestamp:   timestamp,
			Version:     1,
		},
		OperationID:       operationID,
		Status:            status,
		TagsScanned:       tagsScanned,
		SuggestionsRaised: suggestionsRaised,
	}
}

// Subscription Events

// SubscriptionCreated is raised when a reader signs up for the challenge
// mailing list.
type SubscriptionCreated struct {
	BaseEvent
	SubscriptionID string `json:"subscription_id"`
	Email          string `json:"email"`
	Tier           string `json:"tier"`
}

// NewSubscriptionCreated creates a SubscriptionCreated event
func NewSubscriptionCreated(subscriptionID, email, tier string, timestamp time.Time) SubscriptionCreated {
	return SubscriptionCreated{
		BaseEvent: BaseEvent{
			AggregateID: subscriptionID,
			EventType:   "subscription.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		SubscriptionID: subscriptionID,
		Email:          email,
		Tier:           tier,
	}
}

// SubscriptionCancelled is raised when a subscription is cancelled.
type SubscriptionCancelled struct {
	BaseEvent
	SubscriptionID string `json:"subscription_id"`
	Email          string `json:"email"`
}

// NewSubscriptionCancelled creates a SubscriptionCancelled event
func NewSubscriptionCancelled(subscriptionID, email string, timestamp time.Time) SubscriptionCancelled {
	return SubscriptionCancelled{
		BaseEvent: BaseEvent{
			AggregateID: subscriptionID,
			EventType:   "subscription.cancelled",
			Timestamp:   timestamp,
			Version:     1,
		},
		SubscriptionID: subscriptionID,
		Email:          email,
	}
}
