package hierarchy

import "codekata-backend/domain/tag"

// WouldCreateCycle reports whether adding the edge parentID -> childID
// would close a cycle. The candidate child being an ancestor of the
// candidate parent is exactly that condition, so the search climbs the
// existing parent links from parentID looking for childID. A self loop is
// always a cycle and short-circuits without traversal. Visited marking
// guarantees termination even when the graph already, erroneously,
// contains a cycle. The graph is not modified.
func (g *Graph) WouldCreateCycle(parentID, childID tag.ID) bool {
	if parentID.Equals(childID) {
		return true
	}
	visited := make(map[tag.ID]bool)
	return g.reachesAncestor(parentID, childID, visited)
}

// reachesAncestor walks upward from current through parent links, returning
// true when target is found.
func (g *Graph) reachesAncestor(current, target tag.ID, visited map[tag.ID]bool) bool {
	if current.Equals(target) {
		return true
	}
	visited[current] = true
	for _, parentID := range g.Parents(current) {
		if visited[parentID] {
			continue
		}
		if g.reachesAncestor(parentID, target, visited) {
			return true
		}
	}
	return false
}

// FindCyclePath returns the names of every tag on the path that the edge
// parentID -> childID would close, in traversal order starting from the
// candidate parent and ending at the candidate child. It returns nil when
// the edge is safe. A self loop yields the single offending name.
func (g *Graph) FindCyclePath(parentID, childID tag.ID) []string {
	if parentID.Equals(childID) {
		return []string{g.NameOf(parentID)}
	}

	visited := make(map[tag.ID]bool)
	var path []tag.ID
	if !g.climbPath(parentID, childID, visited, &path) {
		return nil
	}

	names := make([]string, len(path))
	for i, id := range path {
		names[i] = g.NameOf(id)
	}
	return names
}

// climbPath is the path-recording variant of reachesAncestor. The path is
// built as the search descends and unwound on backtrack, so a hit leaves
// exactly the offending chain in place.
func (g *Graph) climbPath(current, target tag.ID, visited map[tag.ID]bool, path *[]tag.ID) bool {
	if current.Equals(target) {
		*path = append(*path, current)
		return true
	}
	if visited[current] {
		return false
	}
	visited[current] = true
	*path = append(*path, current)

	for _, parentID := range g.Parents(current) {
		if g.climbPath(parentID, target, visited, path) {
			return true
		}
	}

	*path = (*path)[:len(*path)-1]
	return false
}
