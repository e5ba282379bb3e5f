package graph

import (
	"math"
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/relations"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// DefaultMinParticipation is the number of events a faction needs to become a node
const DefaultMinParticipation = 5

// Options controls thresholding and node sizing
type Options struct {
	MinParticipation int     `json:"minParticipation"`
	MinRadius        float64 `json:"minRadius"`
	MaxRadius        float64 `json:"maxRadius"`
}

// DefaultOptions returns the standard build options
func DefaultOptions() Options {
	return Options{
		MinParticipation: DefaultMinParticipation,
		MinRadius:        4,
		MaxRadius:        32,
	}
}

// Build filters events through the window, aggregates them and returns the
// thresholded faction graph. Identical inputs yield identical output; nodes
// are sorted by id and edges by pair key.
func Build(events []model.Event, f window.Filter, opts Options) *model.GraphData {
	active := window.Apply(events, f)
	g := FromTally(relations.Aggregate(active), opts)

	logging.Debug("built faction graph",
		"year", f.Year, "region", f.Region, "violenceType", int(f.ViolenceType),
		"events", len(active), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g
}

// FromTally converts aggregated tallies into nodes and edges
func FromTally(t *relations.Tally, opts Options) *model.GraphData {
	g := model.NewGraphData()

	// 1. Threshold nodes
	kept := make(map[string]bool)
	maxCasualties := 0.0
	for name, acc := range t.Factions {
		if acc.Participation < opts.MinParticipation {
			continue
		}
		kept[name] = true
		maxCasualties = math.Max(maxCasualties, acc.Casualties)
	}

	scale := NewRadiusScale(maxCasualties, opts.MinRadius, opts.MaxRadius)
	for name := range kept {
		acc := t.Factions[name]
		g.Nodes = append(g.Nodes, model.Faction{
			ID:            name,
			Country:       acc.Country,
			Region:        acc.Region,
			Participation: acc.Participation,
			Casualties:    acc.Casualties,
			Radius:        scale.Radius(acc.Casualties),
		})
	}

	// 2. Keep pairs whose endpoints both survived
	for key, pair := range t.Pairs {
		if pair.Allied == 0 && pair.Opposed == 0 {
			continue
		}
		a, b := key.Names()
		if !kept[a] || !kept[b] {
			continue
		}
		g.Edges = append(g.Edges, model.Relationship{
			Source:         a,
			Target:         b,
			Allied:         pair.Allied,
			Opposed:        pair.Opposed,
			Casualties:     pair.Casualties,
			Classification: pair.Classification(),
		})
	}

	// 3. Sort for deterministic ordering (layout stability)
	sort.Slice(g.Nodes, func(i, j int) bool {
		return g.Nodes[i].ID < g.Nodes[j].ID
	})
	sort.Slice(g.Edges, func(i, j int) bool {
		return g.Edges[i].Key() < g.Edges[j].Key()
	})

	return g
}

// RadiusScale maps casualties onto a clamped square-root radius range
type RadiusScale struct {
	maxCasualties float64
	min           float64
	max           float64
}

// NewRadiusScale creates a scale over [0, maxCasualties]
func NewRadiusScale(maxCasualties, minRadius, maxRadius float64) RadiusScale {
	if math.IsNaN(minRadius) || minRadius < 0 {
		minRadius = 0
	}
	if math.IsNaN(maxRadius) || maxRadius < minRadius {
		maxRadius = minRadius
	}
	if math.IsNaN(maxCasualties) || maxCasualties < 0 {
		maxCasualties = 0
	}
	return RadiusScale{maxCasualties: maxCasualties, min: minRadius, max: maxRadius}
}

// Radius returns the node radius for a casualty total. It is non-decreasing
// in casualties and never below the minimum radius.
func (s RadiusScale) Radius(casualties float64) float64 {
	if s.maxCasualties == 0 || math.IsNaN(casualties) || casualties <= 0 {
		return s.min
	}
	ratio := math.Sqrt(casualties / s.maxCasualties)
	if ratio > 1 {
		ratio = 1
	}
	return s.min + (s.max-s.min)*ratio
}
