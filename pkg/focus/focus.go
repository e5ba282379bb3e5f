// Package focus computes the reduced visible subgraph around a focused faction.
package focus

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// Set is a set of node ids
type Set map[string]struct{}

// NewSet creates a set from ids
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexicographic order
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeFocusSet returns focusedID plus every id sharing an edge with it.
// Second-degree neighbors are never included.
func ComputeFocusSet(edges []model.Relationship, focusedID string) Set {
	set := NewSet(focusedID)
	for _, name := range graph.NewIndex(&model.GraphData{Edges: edges}).Neighbors(focusedID) {
		set[name] = struct{}{}
	}
	return set
}

// VisibleSet returns the node ids the renderer should show. Without a focus
// every node is visible; with a focus only the focus set is, and the focused
// id stays visible even when the current graph no longer contains it.
func VisibleSet(g *model.GraphData, focusedID string) Set {
	if focusedID == "" {
		set := make(Set, len(g.Nodes))
		for _, n := range g.Nodes {
			set[n.ID] = struct{}{}
		}
		return set
	}

	return ComputeFocusSet(g.Edges, focusedID)
}

// VisibleEdges returns the edges whose endpoints are both visible
func VisibleEdges(g *model.GraphData, visible Set) []model.Relationship {
	edges := make([]model.Relationship, 0)
	for _, e := range g.Edges {
		if visible.Has(e.Source) && visible.Has(e.Target) {
			edges = append(edges, e)
		}
	}
	return edges
}
