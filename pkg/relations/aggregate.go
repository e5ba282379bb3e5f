// Package relations tallies faction participation and pairwise interactions.
package relations

import (
	"github.com/ritzau/conflict-atlas/pkg/extract"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// FactionAccumulator is the running tally for one faction
type FactionAccumulator struct {
	Name          string
	Country       string // Country of the first event seen
	Region        string // Region of the first event seen
	Participation int
	Casualties    float64
}

// PairAccumulator is the running tally for one unordered faction pair
type PairAccumulator struct {
	Key        model.PairKey
	Allied     int // Events with both factions on the same side
	Opposed    int // Events with the factions on opposite sides
	Casualties float64
}

// Classification derives ally/enemy from the counts
func (p *PairAccumulator) Classification() model.Classification {
	return model.Classify(p.Allied, p.Opposed)
}

// Tally is the result of aggregating a set of events
type Tally struct {
	Factions map[string]*FactionAccumulator
	Pairs    map[model.PairKey]*PairAccumulator
	Events   int
}

// NewTally creates an empty tally
func NewTally() *Tally {
	return &Tally{
		Factions: make(map[string]*FactionAccumulator),
		Pairs:    make(map[model.PairKey]*PairAccumulator),
	}
}

// Aggregate tallies every event
func Aggregate(events []model.Event) *Tally {
	t := NewTally()
	for i := range events {
		t.Add(&events[i])
	}
	return t
}

// Add folds one event into the tally
func (t *Tally) Add(event *model.Event) {
	sideA := extract.Extract(event.SideA).Sorted()
	sideB := extract.Extract(event.SideB).Sorted()
	casualties := event.Casualties()
	t.Events++

	// Participation: one count per name per event, even when a name is on both sides
	seen := make(map[string]bool, len(sideA)+len(sideB))
	for _, side := range [][]string{sideA, sideB} {
		for _, name := range side {
			if seen[name] {
				continue
			}
			seen[name] = true

			acc := t.faction(name, event)
			acc.Participation++
			acc.Casualties += casualties
		}
	}

	// Coalition partners on the same side
	t.addWithin(sideA, casualties)
	t.addWithin(sideB, casualties)

	// Conflict relationships across sides
	for _, a := range sideA {
		for _, b := range sideB {
			if a == b {
				continue
			}
			pair := t.pair(a, b)
			pair.Opposed++
			pair.Casualties += casualties
		}
	}
}

func (t *Tally) addWithin(side []string, casualties float64) {
	for i := 0; i < len(side); i++ {
		for j := i + 1; j < len(side); j++ {
			pair := t.pair(side[i], side[j])
			pair.Allied++
			pair.Casualties += casualties
		}
	}
}

func (t *Tally) faction(name string, event *model.Event) *FactionAccumulator {
	acc, exists := t.Factions[name]
	if !exists {
		acc = &FactionAccumulator{
			Name:    name,
			Country: event.Country,
			Region:  event.Region,
		}
		t.Factions[name] = acc
	}
	return acc
}

func (t *Tally) pair(a, b string) *PairAccumulator {
	key := model.NewPairKey(a, b)
	acc, exists := t.Pairs[key]
	if !exists {
		acc = &PairAccumulator{Key: key}
		t.Pairs[key] = acc
	}
	return acc
}
