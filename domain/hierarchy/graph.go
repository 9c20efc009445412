// Package hierarchy holds the in-memory tag graph and the validation rules
// that keep the parent/child relation a DAG. A Graph is a snapshot built
// from a fresh corpus fetch; it is never the source of truth and is
// discarded after the request that built it.
package hierarchy

import (
	"sort"
	"strings"

	"codekata-backend/domain/tag"
)

// RelationshipParentChild is the only relationship type in use.
const RelationshipParentChild = "parent_child"

// Edge is a directed parent to child link between two tags.
type Edge struct {
	ParentID tag.ID `json:"parent_id"`
	ChildID  tag.ID `json:"child_id"`
	Type     string `json:"type"`
}

// Graph is the adjacency view over a tag corpus: each identifier maps to
// its record, its parent set, and its derived child set. Both directions
// of every edge are maintained together, so the two maps always agree.
type Graph struct {
	records  map[tag.ID]*tag.Tag
	parents  map[tag.ID]map[tag.ID]struct{}
	children map[tag.ID]map[tag.ID]struct{}
}

// BuildGraph converts a flat list of tag records into a Graph. The input is
// not modified: records are cloned and normalized on the way in. Duplicate
// identifiers resolve last-wins. Parent references that do not resolve to a
// record are kept in the adjacency so an inconsistent corpus still builds.
func BuildGraph(tags []*tag.Tag) *Graph {
	g := &Graph{
		records:  make(map[tag.ID]*tag.Tag, len(tags)),
		parents:  make(map[tag.ID]map[tag.ID]struct{}),
		children: make(map[tag.ID]map[tag.ID]struct{}),
	}

	for _, t := range tags {
		if t == nil || t.ID.IsZero() {
			continue
		}
		record := t.Clone()
		record.Normalize()
		g.records[record.ID] = record
	}

	// Adjacency is derived from the surviving records so a replaced
	// duplicate leaves no stale edges behind.
	for id, record := range g.records {
		for _, parentID := range record.ParentIDs {
			g.link(parentID, id)
		}
	}

	return g
}

// link records the edge parentID -> childID in both directions.
func (g *Graph) link(parentID, childID tag.ID) {
	if g.parents[childID] == nil {
		g.parents[childID] = make(map[tag.ID]struct{})
	}
	g.parents[childID][parentID] = struct{}{}

	if g.children[parentID] == nil {
		g.children[parentID] = make(map[tag.ID]struct{})
	}
	g.children[parentID][childID] = struct{}{}
}

// unlink removes the edge parentID -> childID from both directions.
// Emptied adjacency entries are dropped so removal restores the exact
// prior shape.
func (g *Graph) unlink(parentID, childID tag.ID) {
	if set, ok := g.parents[childID]; ok {
		delete(set, parentID)
		if len(set) == 0 {
			delete(g.parents, childID)
		}
	}
	if set, ok := g.children[parentID]; ok {
		delete(set, childID)
		if len(set) == 0 {
			delete(g.children, parentID)
		}
	}
}

// Tag returns the record for id.
func (g *Graph) Tag(id tag.ID) (*tag.Tag, bool) {
	t, ok := g.records[id]
	return t, ok
}

// Contains reports whether id resolves to a known tag record.
func (g *Graph) Contains(id tag.ID) bool {
	_, ok := g.records[id]
	return ok
}

// Parents returns the parent identifiers of id in stable order.
func (g *Graph) Parents(id tag.ID) []tag.ID {
	return sortedIDs(g.parents[id])
}

// Children returns the derived child identifiers of id in stable order.
func (g *Graph) Children(id tag.ID) []tag.ID {
	return sortedIDs(g.children[id])
}

// HasEdge reports whether the exact edge parentID -> childID exists.
func (g *Graph) HasEdge(parentID, childID tag.ID) bool {
	set, ok := g.children[parentID]
	if !ok {
		return false
	}
	_, ok = set[childID]
	return ok
}

// NameOf returns the display name for id, falling back to the raw
// identifier when no record exists. Explanation strings use this so every
// node on a path is named even in an inconsistent corpus.
func (g *Graph) NameOf(id tag.ID) string {
	if t, ok := g.records[id]; ok && t.Name != "" {
		return t.Name
	}
	return id.String()
}

// Tags returns every record, sorted by name then identifier.
func (g *Graph) Tags() []*tag.Tag {
	tags := make([]*tag.Tag, 0, len(g.records))
	for _, t := range g.records {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		ni, nj := strings.ToLower(tags[i].Name), strings.ToLower(tags[j].Name)
		if ni != nj {
			return ni < nj
		}
		return tags[i].ID.String() < tags[j].ID.String()
	})
	return tags
}

// Edges returns every edge, sorted for stable output.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0)
	for parentID, set := range g.children {
		for childID := range set {
			edges = append(edges, Edge{
				ParentID: parentID,
				ChildID:  childID,
				Type:     RelationshipParentChild,
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].ParentID.Equals(edges[j].ParentID) {
			return edges[i].ParentID.String() < edges[j].ParentID.String()
		}
		return edges[i].ChildID.String() < edges[j].ChildID.String()
	})
	return edges
}

// TagCount returns the number of known records.
func (g *Graph) TagCount() int {
	return len(g.records)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, set := range g.children {
		count += len(set)
	}
	return count
}

func sortedIDs(set map[tag.ID]struct{}) []tag.ID {
	ids := make([]tag.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
