package hierarchy

import (
	"codekata-backend/domain/tag"

	appErrors "codekata-backend/pkg/errors"
)

// ValidateRelationship runs every precondition for the edge
// parentID -> childID without touching the graph. Checks run in a fixed
// order: endpoints known, self loop, duplicate edge, direct reverse edge,
// transitive cycle. The direct-reverse check stays separate from the DFS
// because the two reject with different explanations; the DFS still
// catches a length-2 cycle on its own when reached.
func (g *Graph) ValidateRelationship(parentID, childID tag.ID) error {
	if !g.Contains(parentID) && !g.Contains(childID) {
		return appErrors.NewUnknownTagError(parentID.String(), childID.String())
	}

	if parentID.Equals(childID) {
		return appErrors.NewSelfLoopError(g.NameOf(parentID))
	}

	if g.HasEdge(parentID, childID) {
		return appErrors.NewDuplicateEdgeError(g.NameOf(parentID), g.NameOf(childID))
	}

	if g.HasEdge(childID, parentID) {
		return appErrors.NewDirectCycleError(g.NameOf(parentID), g.NameOf(childID))
	}

	if g.WouldCreateCycle(parentID, childID) {
		return appErrors.NewTransitiveCycleError(g.FindCyclePath(parentID, childID))
	}

	return nil
}

// AddRelationship validates and applies the edge parentID -> childID. Both
// endpoints are updated together: the child's parent set, the parent's
// derived child set, and the child's stored record when one exists. A
// rejection leaves the graph exactly as it was.
func (g *Graph) AddRelationship(parentID, childID tag.ID) error {
	if err := g.ValidateRelationship(parentID, childID); err != nil {
		return err
	}

	g.link(parentID, childID)
	if record, ok := g.records[childID]; ok {
		record.AddParent(parentID)
	}
	return nil
}

// RemoveRelationship removes the edge parentID -> childID from both
// endpoints. It is unconditional and idempotent: removing an edge that is
// not there is a no-op, not an error.
func (g *Graph) RemoveRelationship(parentID, childID tag.ID) {
	g.unlink(parentID, childID)
	if record, ok := g.records[childID]; ok {
		record.RemoveParent(parentID)
	}
}

// RemoveTag drops a record and every edge touching it, in both directions.
// Deleting a tag must leave no dangling edges behind.
func (g *Graph) RemoveTag(id tag.ID) {
	for _, parentID := range g.Parents(id) {
		g.RemoveRelationship(parentID, id)
	}
	for _, childID := range g.Children(id) {
		g.RemoveRelationship(id, childID)
	}
	delete(g.records, id)
}
