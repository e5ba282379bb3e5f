// Package coalition groups factions connected through ally relationships.
package coalition

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"gonum.org/v1/gonum/graph/topo"
)

// Coalition is a set of factions linked by a chain of ally edges
type Coalition struct {
	Members    []string `json:"members"`
	Casualties float64  `json:"casualties"` // Sum over member nodes
}

// Find returns every coalition with at least two members, largest first.
// Enemy edges are ignored.
func Find(g *model.GraphData) []Coalition {
	allies := &model.GraphData{Nodes: g.Nodes}
	for _, e := range g.Edges {
		if e.Classification == model.Ally {
			allies.Edges = append(allies.Edges, e)
		}
	}

	ix := graph.NewIndex(allies)
	casualties := make(map[string]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		casualties[n.ID] = n.Casualties
	}

	coalitions := make([]Coalition, 0)
	for _, component := range topo.ConnectedComponents(ix.Graph()) {
		if len(component) < 2 {
			continue
		}

		c := Coalition{Members: make([]string, 0, len(component))}
		for _, node := range component {
			name, ok := ix.Name(node.ID())
			if !ok {
				continue
			}
			c.Members = append(c.Members, name)
			c.Casualties += casualties[name]
		}
		sort.Strings(c.Members)
		coalitions = append(coalitions, c)
	}

	sort.Slice(coalitions, func(i, j int) bool {
		if len(coalitions[i].Members) != len(coalitions[j].Members) {
			return len(coalitions[i].Members) > len(coalitions[j].Members)
		}
		return coalitions[i].Members[0] < coalitions[j].Members[0]
	})
	return coalitions
}

// Of returns the coalition containing name
func Of(coalitions []Coalition, name string) (Coalition, bool) {
	for _, c := range coalitions {
		for _, m := range c.Members {
			if m == name {
				return c, true
			}
		}
	}
	return Coalition{}, false
}
