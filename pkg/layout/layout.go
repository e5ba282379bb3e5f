// Package layout supplies the inputs of the browser's force layout: one
// horizontal band per region and the force parameters.
package layout

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/model"
)

// DefaultHeight is the canvas height the zones are computed for
const DefaultHeight = 800.0

// ForceConfig parameterizes the layout engine's forces
type ForceConfig struct {
	ChargeStrength   float64 `json:"chargeStrength"`
	AllyDistance     float64 `json:"allyDistance"`
	EnemyDistance    float64 `json:"enemyDistance"`
	CollisionPadding float64 `json:"collisionPadding"`
	ZoneStrength     float64 `json:"zoneStrength"` // Pull toward the region band
	CenterStrength   float64 `json:"centerStrength"`
	AlphaDecay       float64 `json:"alphaDecay"`
}

// DefaultForceConfig returns the forces the dashboard ships with
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		ChargeStrength:   -120,
		AllyDistance:     40,
		EnemyDistance:    120,
		CollisionPadding: 2,
		ZoneStrength:     0.15,
		CenterStrength:   0.05,
		AlphaDecay:       0.0228,
	}
}

// Zone is the horizontal band of one region
type Zone struct {
	Region string  `json:"region"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Y      float64 `json:"y"` // Band center, the layout target
}

// Zones splits height into equal bands, one per distinct region, ordered by name
func Zones(regions []string, height float64) []Zone {
	if height <= 0 {
		height = DefaultHeight
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		names = append(names, r)
	}
	sort.Strings(names)

	zones := make([]Zone, len(names))
	if len(names) == 0 {
		return zones
	}

	band := height / float64(len(names))
	for i, name := range names {
		top := band * float64(i)
		zones[i] = Zone{
			Region: name,
			Top:    top,
			Bottom: top + band,
			Y:      top + band/2,
		}
	}
	return zones
}

// Node is a faction with its layout target
type Node struct {
	model.Faction
	ZoneY float64 `json:"zoneY"`
}

// Annotate attaches each node's zone target. Factions without a known
// region are pulled to the vertical center.
func Annotate(g *model.GraphData, height float64) ([]Node, []Zone) {
	if height <= 0 {
		height = DefaultHeight
	}
	if g == nil {
		return []Node{}, []Zone{}
	}

	regions := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		regions = append(regions, n.Region)
	}
	zones := Zones(regions, height)

	byRegion := make(map[string]float64, len(zones))
	for _, z := range zones {
		byRegion[z.Region] = z.Y
	}

	nodes := make([]Node, 0, len(g.Nodes))
	for _, f := range g.Nodes {
		y, ok := byRegion[f.Region]
		if !ok {
			y = height / 2
		}
		nodes = append(nodes, Node{Faction: f, ZoneY: y})
	}
	return nodes, zones
}
