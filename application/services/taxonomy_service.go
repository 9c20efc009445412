// Package services provides the business logic behind the REST and Lambda
// entrypoints. Each service speaks to storage through the ports package and
// publishes domain events after successful writes.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
	"codekata-backend/domain/hierarchy"
	"codekata-backend/domain/suggest"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// CreateTagRequest carries the fields for a new tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Type        string `json:"type"`
	Description string `json:"description" validate:"max=500"`

	// Force skips the near-duplicate guard. The guard only blocks
	// accidental doubles; an admin who has looked at the matches can
	// override it.
	Force bool `json:"force"`
}

// UpdateTagRequest carries a partial tag update. Nil fields are left alone.
type UpdateTagRequest struct {
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HierarchyView is the full derived graph in one response: every record
// plus every parent/child edge, both in stable order.
type HierarchyView struct {
	Tags      []*tag.Tag       `json:"tags"`
	Edges     []hierarchy.Edge `json:"edges"`
	TagCount  int              `json:"tag_count"`
	EdgeCount int              `json:"edge_count"`
}

// TaxonomyService defines the interface for tag and hierarchy operations.
type TaxonomyService interface {
	// CreateTag creates a new tag, guarding against near-duplicate names
	CreateTag(ctx context.Context, req CreateTagRequest) (*tag.Tag, error)

	// GetTag retrieves a single tag by ID
	GetTag(ctx context.Context, id string) (*tag.Tag, error)

	// ListTags retrieves the full catalog
	ListTags(ctx context.Context) ([]*tag.Tag, error)

	// UpdateTag modifies an existing tag
	UpdateTag(ctx context.Context, id string, req UpdateTagRequest) (*tag.Tag, error)

	// DeleteTag removes a tag and every edge touching it
	DeleteTag(ctx context.Context, id string) error

	// GetHierarchy returns the derived parent/child graph
	GetHierarchy(ctx context.Context) (*HierarchyView, error)

	// AddRelationship validates and commits a parent/child edge
	AddRelationship(ctx context.Context, parentID, childID string) error

	// RemoveRelationship removes a parent/child edge; removing an absent
	// edge is a no-op
	RemoveRelationship(ctx context.Context, parentID, childID string) error

	// ValidateRelationship dry-runs every edge precondition without
	// writing anything
	ValidateRelationship(ctx context.Context, parentID, childID string) error

	// SuggestSimilar scores a candidate name against the catalog
	SuggestSimilar(ctx context.Context, name string) ([]suggest.Match, error)
}

// taxonomyService implements TaxonomyService.
type taxonomyService struct {
	tags      ports.TagRepository
	eventBus  ports.EventBus
	suggester *suggest.Suggester
	logger    *zap.Logger
}

// NewTaxonomyService creates the taxonomy service.
func NewTaxonomyService(
	tags ports.TagRepository,
	eventBus ports.EventBus,
	suggester *suggest.Suggester,
	logger *zap.Logger,
) TaxonomyService {
	if suggester == nil {
		suggester = suggest.NewSuggester(nil)
	}
	return &taxonomyService{
		tags:      tags,
		eventBus:  eventBus,
		suggester: suggester,
		logger:    logger,
	}
}

// CreateTag creates a new tag. An exact name match is always a conflict; a
// near-duplicate (formatting or plural variants of an existing name) is a
// conflict unless the request forces past the guard.
func (s *taxonomyService) CreateTag(ctx context.Context, req CreateTagRequest) (*tag.Tag, error) {
	existing, err := s.tags.FindByName(ctx, req.Name)
	if err != nil && !appErrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.NewConflictError("a tag with this name already exists").
			WithDetails(map[string]interface{}{"existing_id": existing.ID.String()})
	}

	if !req.Force {
		matches, err := s.nearDuplicates(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return nil, appErrors.NewConflictError("a very similar tag already exists").
				WithCode("SIMILAR_TAG_EXISTS").
				WithDetails(map[string]interface{}{"matches": matches})
		}
	}

	record, err := tag.NewTag(req.Name, tag.ParseType(req.Type), req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		zap.String("tagId", record.ID.String()),
		zap.String("name", record.Name),
		zap.String("type", record.Type.String()),
	)
	s.publish(ctx, events.NewTagCreated(record, time.Now()))
	return record, nil
}

// GetTag retrieves a single tag.
func (s *taxonomyService) GetTag(ctx context.Context, id string) (*tag.Tag, error) {
	tagID, err := tag.ParseID(id)
	if err != nil {
		return nil, appErrors.NewValidationError("tag id is required")
	}
	return s.tags.FindByID(ctx, tagID)
}

// ListTags retrieves the full catalog sorted by name.
func (s *taxonomyService) ListTags(ctx context.Context) ([]*tag.Tag, error) {
	records, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.BuildGraph(records).Tags(), nil
}

// UpdateTag applies a partial update. Renaming onto another tag's name is a
// conflict; an explicit unknown type is rejected rather than defaulted,
// since the caller asked for that exact value.
func (s *taxonomyService) UpdateTag(ctx context.Context, id string, req UpdateTagRequest) (*tag.Tag, error) {
	tagID, err := tag.ParseID(id)
	if err != nil {
		return nil, appErrors.NewValidationError("tag id is required")
	}

	record, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && !record.MatchesName(*req.Name) {
		other, err := s.tags.FindByName(ctx, *req.Name)
		if err != nil && !appErrors.IsNotFound(err) {
			return nil, err
		}
		if other != nil && !other.ID.Equals(record.ID) {
			return nil, appErrors.NewConflictError("a tag with this name already exists").
				WithDetails(map[string]interface{}{"existing_id": other.ID.String()})
		}
	}
	if req.Name != nil {
		if err := record.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if err := record.Reclassify(tag.Type(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		record.SetDescription(*req.Description)
	}

	if err := s.tags.Save(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewTagUpdated(record, time.Now()))
	return record, nil
}

// DeleteTag removes a tag together with every edge touching it, so no
// record is left referring to a parent that no longer exists.
func (s *taxonomyService) DeleteTag(ctx context.Context, id string) error {
	tagID, err := tag.ParseID(id)
	if err != nil {
		return appErrors.NewValidationError("tag id is required")
	}

	graph, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	record, ok := graph.Tag(tagID)
	if !ok {
		return appErrors.NewNotFoundError("tag")
	}

	children := graph.Children(tagID)
	removedEdges := len(children) + len(graph.Parents(tagID))
	name := record.Name
	graph.RemoveTag(tagID)

	// Children first: once their parent refs are gone, a crash between
	// writes leaves at worst an unreferenced record, never a dangling edge.
	for _, childID := range children {
		child, ok := graph.Tag(childID)
		if !ok {
			continue
		}
		if err := s.tags.Save(ctx, child); err != nil {
			return err
		}
	}
	if err := s.tags.Delete(ctx, tagID); err != nil {
		return err
	}

	s.logger.Info("tag deleted",
		zap.String("tagId", tagID.String()),
		zap.String("name", name),
		zap.Int("removedEdges", removedEdges),
	)
	s.publish(ctx, events.NewTagDeleted(tagID, name, removedEdges, time.Now()))
	return nil
}

// GetHierarchy returns the derived graph over the full corpus.
func (s *taxonomyService) GetHierarchy(ctx context.Context) (*HierarchyView, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return &HierarchyView{
		Tags:      graph.Tags(),
		Edges:     graph.Edges(),
		TagCount:  graph.TagCount(),
		EdgeCount: graph.EdgeCount(),
	}, nil
}

// AddRelationship validates the proposed edge against the full graph and
// commits it. Persisting requires both endpoint records to exist: the edge
// lives on the child record, and the commit condition-checks the parent so
// the edge cannot land on a tag deleted mid-flight.
func (s *taxonomyService) AddRelationship(ctx context.Context, parentID, childID string) error {
	parent, child, err := parseEdgeIDs(parentID, childID)
	if err != nil {
		return err
	}

	graph, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}

	parentKnown, childKnown := graph.Contains(parent), graph.Contains(child)
	if !parentKnown && !childKnown {
		return appErrors.NewUnknownTagError(parentID, childID)
	}
	if !parentKnown || !childKnown {
		return appErrors.NewNotFoundError("tag")
	}

	if err := graph.AddRelationship(parent, child); err != nil {
		s.logger.Info("relationship rejected",
			zap.String("parentId", parentID),
			zap.String("childId", childID),
			zap.Error(err),
		)
		return err
	}

	record, _ := graph.Tag(child)
	if err := s.tags.SaveWithParentCheck(ctx, record, parent); err != nil {
		return err
	}

	s.publish(ctx, events.NewRelationshipAdded(
		parent, child, graph.NameOf(parent), graph.NameOf(child), time.Now()))
	return nil
}

// RemoveRelationship removes the edge from the child record. A missing
// child or an absent edge counts as already removed.
func (s *taxonomyService) RemoveRelationship(ctx context.Context, parentID, childID string) error {
	parent, child, err := parseEdgeIDs(parentID, childID)
	if err != nil {
		return err
	}

	record, err := s.tags.FindByID(ctx, child)
	if appErrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !record.HasParent(parent) {
		return nil
	}

	record.RemoveParent(parent)
	if err := s.tags.Save(ctx, record); err != nil {
		return err
	}

	s.publish(ctx, events.NewRelationshipRemoved(parent, child, time.Now()))
	return nil
}

// ValidateRelationship dry-runs every edge precondition in order without
// writing anything.
func (s *taxonomyService) ValidateRelationship(ctx context.Context, parentID, childID string) error {
	parent, child, err := parseEdgeIDs(parentID, childID)
	if err != nil {
		return err
	}
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	return graph.ValidateRelationship(parent, child)
}

// SuggestSimilar scores a candidate name against every existing tag name.
func (s *taxonomyService) SuggestSimilar(ctx context.Context, name string) ([]suggest.Match, error) {
	records, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	corpus := make([]string, 0, len(records))
	for _, record := range records {
		corpus = append(corpus, record.Name)
	}
	return s.suggester.FindSimilar(name, corpus), nil
}

// nearDuplicates returns the matches close enough to block tag creation.
func (s *taxonomyService) nearDuplicates(ctx context.Context, name string) ([]suggest.Match, error) {
	matches, err := s.SuggestSimilar(ctx, name)
	if err != nil {
		return nil, err
	}
	blocking := make([]suggest.Match, 0)
	for _, match := range matches {
		if match.Score >= suggest.ScoreNormalized {
			blocking = append(blocking, match)
		}
	}
	return blocking, nil
}

func (s *taxonomyService) loadGraph(ctx context.Context) (*hierarchy.Graph, error) {
	records, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.BuildGraph(records), nil
}

// publish delivers an event. The write that raised it is already durable,
// so delivery is best effort.
func (s *taxonomyService) publish(ctx context.Context, event events.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateId", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

func parseEdgeIDs(parentID, childID string) (tag.ID, tag.ID, error) {
	parent, err := tag.ParseID(parentID)
	if err != nil {
		return tag.ID{}, tag.ID{}, appErrors.NewValidationError("parent id is required")
	}
	child, err := tag.ParseID(childID)
	if err != nil {
		return tag.ID{}, tag.ID{}, appErrors.NewValidationError("child id is required")
	}
	return parent, child, nil
}
