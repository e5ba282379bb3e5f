package model

import "strings"

// pairSeparator joins the two names of a canonical pair key. It is a control
// character so it cannot collide with anything that survives extraction.
const pairSeparator = "\x1f"

// Classification is the relationship type of a faction pair
type Classification string

const (
	Ally  Classification = "ally"
	Enemy Classification = "enemy"
)

// Classify returns Ally only when allied interactions strictly outnumber
// opposed ones. Ties resolve to Enemy.
func Classify(allied, opposed int) Classification {
	if allied > opposed {
		return Ally
	}
	return Enemy
}

// PairKey identifies an unordered faction pair
type PairKey string

// NewPairKey builds the canonical key for two names, ordered lexicographically
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(a + pairSeparator + b)
}

// Names splits the key back into its ordered names
func (k PairKey) Names() (string, string) {
	a, b, _ := strings.Cut(string(k), pairSeparator)
	return a, b
}

// String renders the key for logs and edge ids
func (k PairKey) String() string {
	a, b := k.Names()
	return a + "|" + b
}

// Faction is a node in the relationship graph
type Faction struct {
	ID            string  `json:"id"` // Extracted name
	Country       string  `json:"country"`
	Region        string  `json:"region"`
	Participation int     `json:"participation"` // Number of events on either side
	Casualties    float64 `json:"casualties"`    // Sum of best estimates
	Radius        float64 `json:"radius"`
}

// Relationship is an undirected edge between two factions.
// Source is always the lexicographically smaller name.
type Relationship struct {
	Source         string         `json:"source"`
	Target         string         `json:"target"`
	Allied         int            `json:"allied"`
	Opposed        int            `json:"opposed"`
	Casualties     float64        `json:"casualties"`
	Classification Classification `json:"type"`
}

// Key returns the canonical pair key of the relationship
func (r *Relationship) Key() PairKey {
	return NewPairKey(r.Source, r.Target)
}

// GraphData is the node/edge list consumed by the layout engine and renderer
type GraphData struct {
	Nodes []Faction      `json:"nodes"`
	Edges []Relationship `json:"edges"`
}

// NewGraphData creates an empty graph
func NewGraphData() *GraphData {
	return &GraphData{
		Nodes: make([]Faction, 0),
		Edges: make([]Relationship, 0),
	}
}

// Node looks up a node by id
func (g *GraphData) Node(id string) (*Faction, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// HasNode reports whether a node with the given id exists
func (g *GraphData) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}
