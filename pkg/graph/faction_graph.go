package graph

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// Index is a gonum-backed adjacency index over a built faction graph
type Index struct {
	graph  *simple.UndirectedGraph
	ids    map[string]int64 // Map from faction name to graph ID
	names  map[int64]string // Map from graph ID to faction name
	nextID int64
}

// NewIndex indexes the nodes and edges of g. Edge endpoints missing from
// the node list are added so that neighbor queries stay total.
func NewIndex(g *model.GraphData) *Index {
	ix := &Index{
		graph: simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
	if g == nil {
		return ix
	}

	for _, node := range g.Nodes {
		ix.addNode(node.ID)
	}
	for i := range g.Edges {
		ix.addEdge(&g.Edges[i])
	}
	return ix
}

func (ix *Index) addNode(name string) int64 {
	if id, exists := ix.ids[name]; exists {
		return id
	}

	id := ix.nextID
	ix.ids[name] = id
	ix.names[id] = name
	ix.graph.AddNode(simple.Node(id))
	ix.nextID++
	return id
}

func (ix *Index) addEdge(rel *model.Relationship) {
	if rel.Source == rel.Target {
		return
	}

	from := ix.addNode(rel.Source)
	to := ix.addNode(rel.Target)

	if !ix.graph.HasEdgeBetween(from, to) {
		ix.graph.SetEdge(ix.graph.NewEdge(ix.graph.Node(from), ix.graph.Node(to)))
	}
}

// Neighbors returns the names directly connected to name, sorted
func (ix *Index) Neighbors(name string) []string {
	id, exists := ix.ids[name]
	if !exists {
		return nil
	}

	var neighbors []string
	iter := ix.graph.From(id)
	for iter.Next() {
		neighbors = append(neighbors, ix.names[iter.Node().ID()])
	}
	sort.Strings(neighbors)
	return neighbors
}

// Name returns the faction name for a gonum node ID
func (ix *Index) Name(id int64) (string, bool) {
	name, ok := ix.names[id]
	return name, ok
}

// Graph returns the underlying undirected graph
func (ix *Index) Graph() *simple.UndirectedGraph {
	return ix.graph
}
